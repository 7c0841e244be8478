// Package server is a local relay in front of the KoalaGPT api client. It
// accepts {"model","text"} chat requests and streams the reply back as
// ndjson {"processedText"} lines.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bz888/koalagpt/internal/api/client"
	"github.com/bz888/koalagpt/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// ChatClient is the part of the api client the relay uses.
type ChatClient interface {
	CreateChatCompletionStream(
		ctx context.Context,
		req client.ChatCompletionRequest,
		onFrame func([]client.ChatCompletionResponse),
		onComplete func(),
	) error
	CreateChatCompletionSimplePrompt(ctx context.Context, p client.PromptRequest, opts ...client.BuildOption) (string, error)
}

type Server struct {
	client   ChatClient
	history  *History
	addr     string
	internet bool
	log      *logger.Logger
}

type Option func(*Server)

// WithInternetAccess lets non-streaming replies use internet access.
func WithInternetAccess(enabled bool) Option {
	return func(s *Server) {
		s.internet = enabled
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

func New(c ChatClient, addr string, opts ...Option) *Server {
	s := &Server{
		client:  c,
		history: &History{},
		addr:    addr,
		log:     logger.NewLogger("Server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History is the conversation relayed so far.
func (s *Server) History() *History {
	return s.history
}

// Routes returns the relay's handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", s.ProcessTextHandler)
	mux.HandleFunc("/history", s.historyHandler)
	mux.HandleFunc("/status", s.statusHandler)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server started on http://" + s.addr + "/")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
