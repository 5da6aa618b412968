// Package file provides stash adapters backed by a single file on disk.
//
// The whole file is one document. A missing or empty file reads as an absent
// value; writing an absent value truncates the file to zero bytes.
package file

import (
	"context"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
)

// Adapter stores a value of type T in a file using a codec.
type Adapter[T any] struct {
	path string
	opts *Options
}

// New creates a file adapter for path. The codec defaults to indented JSON.
func New[T any](path string, opts ...Option) *Adapter[T] {
	return &Adapter[T]{
		path: path,
		opts: ApplyOptions(opts...),
	}
}

// JSON creates an adapter storing T as indented JSON.
func JSON[T any](path string, opts ...Option) *Adapter[T] {
	return New[T](path, append([]Option{WithCodec(codec.DefaultJSON)}, opts...)...)
}

// YAML creates an adapter storing T as YAML.
func YAML[T any](path string, opts ...Option) *Adapter[T] {
	return New[T](path, append([]Option{WithCodec(codec.YAML{})}, opts...)...)
}

// Path returns the file location.
func (a *Adapter[T]) Path() string {
	return a.path
}

// Read decodes the file. Empty or missing files yield nil.
func (a *Adapter[T]) Read(ctx context.Context) (*T, error) {
	raw, err := readFile(ctx, a.path)
	if err != nil {
		return nil, err
	}
	data, err := codec.Decode[T](a.opts.Codec, raw)
	if err != nil {
		return nil, stash.NewMalformedError(a.path, err)
	}
	return data, nil
}

// Write encodes data and replaces the file with it.
func (a *Adapter[T]) Write(ctx context.Context, data *T) error {
	raw, err := codec.Encode(a.opts.Codec, data)
	if err != nil {
		return stash.NewStorageError(stash.OpWrite, a.path, err)
	}
	return writeFile(ctx, a.path, raw, a.opts)
}

var _ stash.Adapter[struct{}] = (*Adapter[struct{}])(nil)
