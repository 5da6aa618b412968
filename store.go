package stash

import (
	"context"
	"reflect"
)

// Store holds the current in-memory value and synchronizes it with an Adapter.
//
// The value starts absent. Read replaces it with whatever the adapter loads;
// Write persists it in full. Between the two the caller may mutate or replace
// the value freely.
//
// A Store holds no locks. Callers serialize their own Read, Write and
// assignment calls.
type Store[T any] struct {
	adapter Adapter[T]
	data    *T
}

// New creates a Store backed by adapter.
// It returns ErrMissingAdapter if adapter is nil.
func New[T any](adapter Adapter[T]) (*Store[T], error) {
	if isNil(adapter) {
		return nil, ErrMissingAdapter
	}
	return &Store[T]{adapter: adapter}, nil
}

// MustNew is like New but panics if adapter is nil.
func MustNew[T any](adapter Adapter[T]) *Store[T] {
	s, err := New(adapter)
	if err != nil {
		panic(err)
	}
	return s
}

// Read loads the value from the adapter, replacing the current one.
// On error the current value is left untouched and the adapter's error is
// returned as is.
func (s *Store[T]) Read(ctx context.Context) error {
	data, err := s.adapter.Read(ctx)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

// Write persists the current value through the adapter.
// Writing an absent value clears the medium.
func (s *Store[T]) Write(ctx context.Context) error {
	return s.adapter.Write(ctx, s.data)
}

// Update applies fn to the current value and writes the result.
// If the value is absent, fn receives a pointer to the zero value of T.
func (s *Store[T]) Update(ctx context.Context, fn func(*T)) error {
	if s.data == nil {
		s.data = new(T)
	}
	fn(s.data)
	return s.Write(ctx)
}

// Data returns the current value, or nil when it is absent.
// The returned pointer is the Store's own; changes made through it are
// persisted by the next Write.
func (s *Store[T]) Data() *T {
	return s.data
}

// Set replaces the current value.
func (s *Store[T]) Set(value T) {
	s.data = &value
}

// Replace replaces the current value with data. A nil data makes it absent.
func (s *Store[T]) Replace(data *T) {
	s.data = data
}

// Present reports whether the Store holds a value.
func (s *Store[T]) Present() bool {
	return s.data != nil
}

// Adapter returns the underlying adapter.
func (s *Store[T]) Adapter() Adapter[T] {
	return s.adapter
}

// isNil catches typed nil pointers hidden inside a non-nil interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
