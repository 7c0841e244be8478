package client

import "fmt"

// TransportError is a connection level failure below the payload.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response whose body could not be decoded.
type StatusError struct {
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s: %q", e.StatusCode, e.Path, e.Body)
}

func statusOK(code int) bool {
	return code >= 200 && code < 300
}

func newStatusError(path string, code int, body []byte) *StatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{Path: path, StatusCode: code, Body: append([]byte(nil), body...)}
}

const maxErrorBody = 512
