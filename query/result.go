package query

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Result is the outcome of a path lookup. Results chain: looking up a path
// on a missing Result yields another missing Result.
type Result struct {
	res gjson.Result
	err error
}

// Err returns the error that stopped evaluation, if any.
func (r Result) Err() error {
	return r.err
}

// Exists reports whether the path matched a value.
func (r Result) Exists() bool {
	return r.err == nil && r.res.Exists()
}

// Get evaluates path relative to this result.
func (r Result) Get(path string) Result {
	if r.err != nil {
		return r
	}
	return Result{res: r.res.Get(path)}
}

// At returns the i-th element of an array result. Negative indexes count
// from the end.
func (r Result) At(i int) Result {
	if r.err != nil {
		return r
	}
	if !r.res.IsArray() {
		return Result{}
	}
	items := r.res.Array()
	if i < 0 {
		i += len(items)
	}
	if i < 0 || i >= len(items) {
		return Result{}
	}
	return Result{res: items[i]}
}

// First returns the first element of an array result.
func (r Result) First() Result {
	return r.At(0)
}

// Last returns the last element of an array result.
func (r Result) Last() Result {
	return r.At(-1)
}

// Len returns the number of elements of an array or object result.
func (r Result) Len() int {
	switch {
	case r.err != nil:
		return 0
	case r.res.IsArray():
		return len(r.res.Array())
	case r.res.IsObject():
		return len(r.res.Map())
	}
	return 0
}

// Each calls fn for every element of an array or entry of an object until
// fn returns false. Array keys are indexes.
func (r Result) Each(fn func(key, value Result) bool) {
	if r.err != nil {
		return
	}
	r.res.ForEach(func(k, v gjson.Result) bool {
		return fn(Result{res: k}, Result{res: v})
	})
}

// Value returns the result as a Go value (map[string]any, []any, string,
// float64, bool or nil).
func (r Result) Value() any {
	return r.res.Value()
}

// String returns the result as a string. JSON values are returned raw.
func (r Result) String() string {
	return r.res.String()
}

// Int returns the result as an int64.
func (r Result) Int() int64 {
	return r.res.Int()
}

// Float returns the result as a float64.
func (r Result) Float() float64 {
	return r.res.Float()
}

// Bool returns the result as a bool.
func (r Result) Bool() bool {
	return r.res.Bool()
}

// Raw returns the raw JSON of the result.
func (r Result) Raw() string {
	return r.res.Raw
}

// Decode unmarshals the result into v.
func (r Result) Decode(v any) error {
	if r.err != nil {
		return r.err
	}
	raw := r.res.Raw
	if raw == "" {
		raw = "null"
	}
	return json.Unmarshal([]byte(raw), v)
}
