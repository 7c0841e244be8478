// Package codec converts between wire JSON and the request/response types of
// the api client.
//
// Wire names are lower snake case and are declared on every field with a json
// tag. Optional values are pointers, slices or maps tagged omitempty so that
// an unset value is left out of the payload instead of being sent as null.
// Decoding is strict: a member with no matching field is an error.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxExcerpt bounds the body kept on a DecodeError.
const maxExcerpt = 512

// DecodeError reports a payload that does not match the target schema or is
// not valid JSON.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode payload: %v (body: %q)", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(data []byte, err error) *DecodeError {
	body := data
	if len(body) > maxExcerpt {
		body = body[:maxExcerpt]
	}
	return &DecodeError{Body: append([]byte(nil), body...), Err: err}
}

// Marshal serializes v into wire JSON.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal strictly decodes a single JSON value from data into v.
func Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return newDecodeError(data, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return newDecodeError(data, errors.New("unexpected data after top-level value"))
	}
	return nil
}
