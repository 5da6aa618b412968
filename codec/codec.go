// Package codec provides the serialization formats used by stash adapters.
package codec

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec encodes and decodes whole values.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the codec identifier used in diagnostics.
	Name() string
}

// JSON encodes values as JSON text. A non-empty Indent pretty-prints the output.
type JSON struct {
	Indent string
}

// DefaultJSON is two-space indented JSON.
var DefaultJSON = JSON{Indent: "  "}

// Marshal serializes v as JSON followed by a newline.
func (c JSON) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses JSON into v.
func (c JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name returns "json".
func (c JSON) Name() string { return "json" }

// YAML encodes values as YAML documents.
type YAML struct{}

// Marshal serializes v as YAML.
func (YAML) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal parses YAML into v.
func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }

// IsEmpty reports whether data holds nothing but whitespace.
func IsEmpty(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// Decode unmarshals data into a new T. Empty input decodes to nil, as does a
// document that is an explicit null.
func Decode[T any](c Codec, data []byte) (*T, error) {
	if IsEmpty(data) {
		return nil, nil
	}
	var out *T
	if err := c.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode marshals data. A nil data encodes to an empty byte slice.
func Encode[T any](c Codec, data *T) ([]byte, error) {
	if data == nil {
		return []byte{}, nil
	}
	return c.Marshal(data)
}
