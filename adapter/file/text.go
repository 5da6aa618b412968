package file

import (
	"context"

	"github.com/spetersoncode/stash"
)

// Text stores a raw string in a file, without any encoding.
type Text struct {
	path string
	opts *Options
}

// NewText creates a raw text adapter for path.
func NewText(path string, opts ...Option) *Text {
	return &Text{
		path: path,
		opts: ApplyOptions(opts...),
	}
}

// Path returns the file location.
func (t *Text) Path() string {
	return t.path
}

// Read returns the file content. A missing or zero-length file yields nil.
func (t *Text) Read(ctx context.Context) (*string, error) {
	raw, err := readFile(ctx, t.path)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	s := string(raw)
	return &s, nil
}

// Write replaces the file content with data. A nil data truncates the file.
func (t *Text) Write(ctx context.Context, data *string) error {
	var raw []byte
	if data != nil {
		raw = []byte(*data)
	}
	return writeFile(ctx, t.path, raw, t.opts)
}

var _ stash.Adapter[string] = (*Text)(nil)
