// Package transport issues HTTP requests and exposes the response body as a
// buffer that grows while the transfer is still in progress.
package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
)

const readChunkSize = 32 * 1024

// Transport sends a request and hands back a Handle as soon as the response
// headers have arrived.
type Transport interface {
	Issue(req *http.Request) (Handle, error)
}

// Handle is the in-flight view of one response. The body keeps being read
// until it ends or the request context is cancelled, even after the caller
// stops polling; cancel the context to release the connection early.
type Handle interface {
	// Done reports whether the body has been read to the end or failed.
	Done() bool
	// Buffer returns every body byte received so far. Successive calls return
	// a growing prefix of the same stream; the returned slice is never
	// modified afterwards.
	Buffer() []byte
	// Status is the HTTP status code of the response.
	Status() int
	// Err is the read error that ended the transfer, if any. It is only
	// meaningful once Done reports true.
	Err() error
	// Progress receives a value whenever new bytes arrive or the transfer
	// ends. Signals are coalesced.
	Progress() <-chan struct{}
}

// HTTP is the net/http backed Transport.
type HTTP struct {
	client *http.Client
}

func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTP{client: client}
}

func (t *HTTP) Issue(req *http.Request) (Handle, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}

	h := &bodyHandle{
		status:   resp.StatusCode,
		progress: make(chan struct{}, 1),
	}
	go h.pump(resp.Body)
	return h, nil
}

type bodyHandle struct {
	mu     sync.Mutex
	buf    []byte
	done   bool
	err    error
	status int

	progress chan struct{}
}

func (h *bodyHandle) pump(body io.ReadCloser) {
	defer body.Close()

	chunk := make([]byte, readChunkSize)
	for {
		n, err := body.Read(chunk)

		h.mu.Lock()
		if n > 0 {
			h.buf = append(h.buf, chunk[:n]...)
		}
		if err != nil {
			h.done = true
			if !errors.Is(err, io.EOF) {
				h.err = err
			}
		}
		h.mu.Unlock()

		if n > 0 || err != nil {
			h.signal()
		}
		if err != nil {
			return
		}
	}
}

func (h *bodyHandle) signal() {
	select {
	case h.progress <- struct{}{}:
	default:
	}
}

func (h *bodyHandle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

func (h *bodyHandle) Buffer() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf[:len(h.buf):len(h.buf)]
}

func (h *bodyHandle) Status() int {
	return h.status
}

func (h *bodyHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *bodyHandle) Progress() <-chan struct{} {
	return h.progress
}

// Wait blocks until h is done or ctx is cancelled.
func Wait(ctx context.Context, h Handle) error {
	for !h.Done() {
		select {
		case <-h.Progress():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
