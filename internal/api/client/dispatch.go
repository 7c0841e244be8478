package client

import (
	"context"
	"net/http"

	"github.com/bz888/koalagpt/internal/api/codec"
	"github.com/bz888/koalagpt/internal/api/transport"
)

// dispatchOnce issues one request and waits for the whole body.
func (c *Client) dispatchOnce(ctx context.Context, method, path string, payload []byte, accept string) ([]byte, int, error) {
	req, err := c.newRequest(ctx, method, path, payload, accept)
	if err != nil {
		return nil, 0, err
	}

	h, err := c.transport.Issue(req)
	if err != nil {
		c.log.Errorw("request failed", "path", path, "error", err)
		return nil, 0, &TransportError{Path: path, Err: err}
	}

	if err := transport.Wait(ctx, h); err != nil {
		return nil, h.Status(), &TransportError{Path: path, Err: err}
	}
	if err := h.Err(); err != nil {
		c.log.Errorw("reading response failed", "path", path, "error", err)
		return nil, h.Status(), &TransportError{Path: path, Err: err}
	}
	return h.Buffer(), h.Status(), nil
}

// dispatchResult sends v to path and decodes the reply once. A ServiceError in
// the reply is logged and returned as data, not as a Go error.
func dispatchResult[T any](ctx context.Context, c *Client, method, path string, v any) (Result[T], error) {
	var res Result[T]

	payload, err := codec.Marshal(v)
	if err != nil {
		return res, err
	}

	body, status, err := c.dispatchOnce(ctx, method, path, payload, "application/json")
	if err != nil {
		return res, err
	}

	res, err = decodeResult[T](body)
	if err != nil {
		if !statusOK(status) {
			return res, newStatusError(path, status, body)
		}
		c.log.Errorw("response decode failed", "path", path, "error", err)
		return res, err
	}

	if res.Failed() {
		c.log.Errorw("service error", "path", path, "message", res.Err.Message, "type", res.Err.Type)
	}
	return res, nil
}

// dispatchText sends v to path and returns the raw reply body.
func (c *Client) dispatchText(ctx context.Context, path string, v any, accept string) ([]byte, error) {
	payload, err := codec.Marshal(v)
	if err != nil {
		return nil, err
	}

	body, status, err := c.dispatchOnce(ctx, http.MethodPost, path, payload, accept)
	if err != nil {
		return nil, err
	}
	if !statusOK(status) {
		return nil, newStatusError(path, status, body)
	}
	return body, nil
}
