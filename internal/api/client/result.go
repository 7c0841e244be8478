package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bz888/koalagpt/internal/api/codec"
)

const errorMember = "error"

// ServiceError is an application level error returned by the service inside
// an otherwise well-formed payload.
type ServiceError struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Param   *string `json:"param,omitempty"`
	Code    *string `json:"code,omitempty"`
}

func (e *ServiceError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Result is either a decoded value or the error the service embedded in the
// payload. A frame of a stream is a Result as well.
type Result[T any] struct {
	Value T
	Err   *ServiceError
}

// Failed reports whether the service answered with an error.
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// decodeResult strictly decodes data into a Result. A top-level "error"
// member selects the error branch; the other members are still decoded into
// T, so unknown fields are rejected on both branches.
func decodeResult[T any](data []byte) (Result[T], error) {
	var res Result[T]

	var members map[string]json.RawMessage
	if err := codec.Unmarshal(data, &members); err != nil {
		return res, err
	}
	if members == nil {
		return res, &codec.DecodeError{Body: data, Err: fmt.Errorf("payload is not an object")}
	}

	if raw, ok := members[errorMember]; ok {
		delete(members, errorMember)
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			var serviceErr ServiceError
			if err := codec.Unmarshal(raw, &serviceErr); err != nil {
				return res, err
			}
			res.Err = &serviceErr
		}
	}

	rest, err := json.Marshal(members)
	if err != nil {
		return res, fmt.Errorf("re-encode payload: %w", err)
	}
	if err := codec.Unmarshal(rest, &res.Value); err != nil {
		return res, err
	}
	return res, nil
}
