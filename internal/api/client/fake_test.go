package client

import (
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/bz888/koalagpt/internal/api/transport"
	"github.com/bz888/koalagpt/internal/config"
	"github.com/bz888/koalagpt/internal/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// scriptedHandle reveals one chunk of the body on every Done call, so the
// poll sequence of a stream is fixed by the chunk list.
type scriptedHandle struct {
	mu       sync.Mutex
	chunks   []string
	revealed int
	buf      []byte
	status   int
	err      error
	progress chan struct{}
}

func newScriptedHandle(status int, chunks ...string) *scriptedHandle {
	ready := make(chan struct{})
	close(ready)
	return &scriptedHandle{chunks: chunks, status: status, progress: ready}
}

func (h *scriptedHandle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revealed < len(h.chunks) {
		h.buf = append(h.buf, h.chunks[h.revealed]...)
		h.revealed++
	}
	return h.revealed == len(h.chunks)
}

func (h *scriptedHandle) Buffer() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf[:len(h.buf):len(h.buf)]
}

func (h *scriptedHandle) Status() int {
	return h.status
}

func (h *scriptedHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revealed < len(h.chunks) {
		return nil
	}
	return h.err
}

func (h *scriptedHandle) Progress() <-chan struct{} {
	return h.progress
}

type fakeTransport struct {
	handle   transport.Handle
	issueErr error

	req  *http.Request
	body []byte
}

func (f *fakeTransport) Issue(req *http.Request) (transport.Handle, error) {
	f.req = req
	if req.Body != nil {
		f.body, _ = io.ReadAll(req.Body)
	}
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return f.handle, nil
}

func newTestClient(t *testing.T, tr transport.Transport) (*Client, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := New(config.New("sk-test", "org-test"),
		WithTransport(tr),
		WithLogger(logger.New(zap.New(core), "api client")),
	)
	require.NoError(t, err)
	return c, logs
}

// recorder collects stream callbacks.
type recorder[T any] struct {
	batches   [][]T
	completed int
}

func (r *recorder[T]) onFrame(batch []T) {
	r.batches = append(r.batches, batch)
}

func (r *recorder[T]) onComplete() {
	r.completed++
}

func (r *recorder[T]) frames() []T {
	var all []T
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return all
}

func messages(frames []CompletionResponse) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Message)
	}
	return out
}

func nopLogger() *logger.Logger {
	return logger.New(zap.NewNop(), "test")
}
