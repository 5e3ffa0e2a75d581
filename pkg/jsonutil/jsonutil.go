// Package jsonutil wraps github.com/go-json-experiment/json behind a small
// stdlib-shaped API. The experimental encoder is noticeably faster than
// encoding/json on the scan-result payloads the API serves.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
)

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal parses data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MarshalWrite encodes v directly to w.
func MarshalWrite(w io.Writer, v any) error {
	return json.MarshalWrite(w, v)
}

// UnmarshalRead decodes a single JSON value from r into v.
func UnmarshalRead(r io.Reader, v any) error {
	return json.UnmarshalRead(r, v)
}
