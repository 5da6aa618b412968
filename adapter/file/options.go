package file

import (
	"os"

	"github.com/spetersoncode/stash/codec"
)

// Options contains configuration for a file adapter.
type Options struct {
	Codec  codec.Codec
	Perm   os.FileMode
	Atomic bool
}

// Option is a functional option for configuring file adapters.
type Option func(*Options)

// WithCodec sets the serialization format. Ignored by Text.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		o.Codec = c
	}
}

// WithPerm sets the permission bits of the written file (default 0644).
func WithPerm(perm os.FileMode) Option {
	return func(o *Options) {
		o.Perm = perm
	}
}

// WithAtomic controls whether writes go through a temporary file that is
// renamed over the target (default true). Without it the target is truncated
// and rewritten in place.
func WithAtomic(atomic bool) Option {
	return func(o *Options) {
		o.Atomic = atomic
	}
}

// ApplyOptions applies functional options on top of the defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		Codec:  codec.DefaultJSON,
		Perm:   0o644,
		Atomic: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
