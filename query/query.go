// Package query provides chained path lookups over a store's value.
//
// A Query wraps a getter such as [stash.Store.Data] and reads the current
// value through its JSON form, so it works for any T that marshals to JSON.
// Paths use gjson syntax ("todos", "todos.0", "users.#.name"):
//
//	q := query.Of(s)
//	first := q.Get("todos").First().String()
//
// Queries never change the store. Set and Delete return a new value that the
// caller hands to [stash.Store.Replace] before writing.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/spetersoncode/stash"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Query evaluates paths against the value returned by a getter.
type Query[T any] struct {
	get func() *T
}

// New creates a Query over get. The getter is called on every evaluation,
// so results always reflect the latest value.
func New[T any](get func() *T) *Query[T] {
	return &Query[T]{get: get}
}

// Of creates a Query over a store's current value.
func Of[T any](s *stash.Store[T]) *Query[T] {
	return New(s.Data)
}

// JSON returns the current value encoded as JSON, or "null" when absent.
func (q *Query[T]) JSON() ([]byte, error) {
	data := q.get()
	if data == nil {
		return []byte("null"), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("query: encode value: %w", err)
	}
	return raw, nil
}

// Root returns the whole value as a Result. It does not exist when the
// value is absent.
func (q *Query[T]) Root() Result {
	if q.get() == nil {
		return Result{}
	}
	raw, err := q.JSON()
	if err != nil {
		return Result{err: err}
	}
	return Result{res: gjson.ParseBytes(raw)}
}

// Get evaluates path against the current value.
func (q *Query[T]) Get(path string) Result {
	raw, err := q.JSON()
	if err != nil {
		return Result{err: err}
	}
	return Result{res: gjson.GetBytes(raw, path)}
}

// Set returns a copy of the current value with path set to value.
// Missing objects along the path are created. When the current value is
// absent, Set starts from an empty object.
func (q *Query[T]) Set(path string, value any) (*T, error) {
	raw, err := q.base()
	if err != nil {
		return nil, err
	}
	updated, err := sjson.SetBytes(raw, path, value)
	if err != nil {
		return nil, fmt.Errorf("query: set %q: %w", path, err)
	}
	return decode[T](updated)
}

// SetRaw is like Set but takes value as raw JSON.
func (q *Query[T]) SetRaw(path string, value []byte) (*T, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("query: set %q: invalid JSON value", path)
	}
	raw, err := q.base()
	if err != nil {
		return nil, err
	}
	updated, err := sjson.SetRawBytes(raw, path, value)
	if err != nil {
		return nil, fmt.Errorf("query: set %q: %w", path, err)
	}
	return decode[T](updated)
}

// Delete returns a copy of the current value with path removed.
func (q *Query[T]) Delete(path string) (*T, error) {
	raw, err := q.base()
	if err != nil {
		return nil, err
	}
	updated, err := sjson.DeleteBytes(raw, path)
	if err != nil {
		return nil, fmt.Errorf("query: delete %q: %w", path, err)
	}
	return decode[T](updated)
}

func (q *Query[T]) base() ([]byte, error) {
	if q.get() == nil {
		return []byte("{}"), nil
	}
	return q.JSON()
}

func decode[T any](raw []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("query: decode value: %w", err)
	}
	return out, nil
}
