// Package memory provides an in-process stash adapter.
package memory

import (
	"context"
	"sync"

	"github.com/spetersoncode/stash"
	"github.com/spetersoncode/stash/codec"
)

// Adapter keeps an encoded snapshot of the last written value in memory.
// Each Read decodes a fresh copy, so mutating a value after Write does not
// change what the adapter holds. Adapter is safe for concurrent use.
type Adapter[T any] struct {
	mu    sync.RWMutex
	codec codec.Codec
	data  []byte
}

// New creates an empty in-memory adapter.
func New[T any]() *Adapter[T] {
	return &Adapter[T]{codec: codec.JSON{}}
}

// NewFrom creates an in-memory adapter pre-loaded with initial.
func NewFrom[T any](initial T) (*Adapter[T], error) {
	a := New[T]()
	if err := a.Write(context.Background(), &initial); err != nil {
		return nil, err
	}
	return a, nil
}

// Read decodes the stored snapshot. It returns nil when nothing was written.
func (m *Adapter[T]) Read(_ context.Context) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, err := codec.Decode[T](m.codec, m.data)
	if err != nil {
		return nil, stash.NewMalformedError("memory", err)
	}
	return data, nil
}

// Write replaces the stored snapshot. A nil data clears it.
func (m *Adapter[T]) Write(_ context.Context, data *T) error {
	raw, err := codec.Encode(m.codec, data)
	if err != nil {
		return stash.NewStorageError(stash.OpWrite, "memory", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = raw
	return nil
}

// Bytes returns a copy of the stored snapshot.
func (m *Adapter[T]) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

var _ stash.Adapter[struct{}] = (*Adapter[struct{}])(nil)
