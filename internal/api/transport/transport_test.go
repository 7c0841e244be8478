package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPBufferGrowsWhileInProgress(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("data: first\n"))
		w.(http.Flusher).Flush()
		<-release
		w.Write([]byte("data: second\n"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	require.NoError(t, err)

	h, err := NewHTTP(nil).Issue(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, h.Status())

	deadline := time.After(5 * time.Second)
	for string(h.Buffer()) != "data: first\n" {
		select {
		case <-h.Progress():
		case <-deadline:
			t.Fatalf("timed out waiting for first chunk, have %q", h.Buffer())
		}
	}
	first := h.Buffer()
	assert.False(t, h.Done())

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, Wait(ctx, h))

	assert.True(t, h.Done())
	assert.NoError(t, h.Err())
	assert.Equal(t, "data: first\ndata: second\n", string(h.Buffer()))
	assert.Equal(t, "data: first\n", string(first), "earlier snapshots are never rewritten")
}

func TestHTTPReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	h, err := NewHTTP(srv.Client()).Issue(req)
	require.NoError(t, err)
	require.NoError(t, Wait(context.Background(), h))

	assert.Equal(t, http.StatusBadGateway, h.Status())
	assert.Equal(t, "<html>bad gateway</html>", string(h.Buffer()))
}

func TestHTTPIssueConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	_, err = NewHTTP(nil).Issue(req)
	assert.Error(t, err)
}

func TestWaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	h, err := NewHTTP(nil).Issue(req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, Wait(ctx, h), context.DeadlineExceeded)
	assert.False(t, h.Done())
}

func TestCancelReleasesTransfer(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("data: [DONE]\n"))
		w.(http.Flusher).Flush()
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	reqCtx, cancelReq := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	h, err := NewHTTP(nil).Issue(req)
	require.NoError(t, err)

	cancelReq()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, Wait(ctx, h))
	assert.True(t, h.Done())
	assert.Error(t, h.Err())
}
