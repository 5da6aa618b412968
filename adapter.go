package stash

import "context"

// Adapter translates between a durable medium and an in-memory value of type T.
//
// A nil *T is the absent value. Read returns nil, nil when the medium does not
// exist yet or is empty. Write with nil clears the medium back to that empty
// state, so a following Read yields absent again.
//
// Failures are reported as *StorageError. Read must not modify the medium;
// Write replaces its entire content.
type Adapter[T any] interface {
	// Read loads and decodes the medium.
	Read(ctx context.Context) (*T, error)

	// Write encodes data and overwrites the medium with it.
	Write(ctx context.Context, data *T) error
}

// AdapterFunc pairs two functions into an Adapter.
type AdapterFunc[T any] struct {
	ReadFunc  func(ctx context.Context) (*T, error)
	WriteFunc func(ctx context.Context, data *T) error
}

// Read calls ReadFunc.
func (f AdapterFunc[T]) Read(ctx context.Context) (*T, error) {
	return f.ReadFunc(ctx)
}

// Write calls WriteFunc.
func (f AdapterFunc[T]) Write(ctx context.Context, data *T) error {
	return f.WriteFunc(ctx, data)
}
