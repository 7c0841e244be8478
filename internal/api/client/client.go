// Package client is the KoalaGPT api client: request builders, the unary and
// stream dispatchers, and one method per endpoint.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bz888/koalagpt/internal/api/transport"
	"github.com/bz888/koalagpt/internal/config"
	"github.com/bz888/koalagpt/internal/logger"
)

// Client sends requests to the KoalaGPT service. It is safe for concurrent
// use; every call owns its own dispatch state.
type Client struct {
	base      *url.URL
	conf      *config.Configuration
	transport transport.Transport
	log       *logger.Logger

	// optErr is the first error raised by an Option; New returns it.
	optErr error
}

type Option func(*Client)

// WithTransport replaces the net/http transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient sends requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport = transport.NewHTTP(hc)
	}
}

// WithBaseURL overrides the base path of the configuration. New fails when
// base is not an absolute url.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		u, err := parseBase(base)
		if err != nil {
			if c.optErr == nil {
				c.optErr = err
			}
			return
		}
		c.base = u
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for conf. A nil conf sends anonymous requests to the
// default base path.
func New(conf *config.Configuration, opts ...Option) (*Client, error) {
	if conf == nil {
		conf = &config.Configuration{}
	}

	base := conf.BaseURL
	if base == "" {
		base = config.DefaultBasePath
	}
	u, err := parseBase(base)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:      u,
		conf:      conf,
		transport: transport.NewHTTP(nil),
		log:       logger.NewLogger("api client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.optErr != nil {
		return nil, c.optErr
	}
	return c, nil
}

func parseBase(base string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", base)
	}
	return u, nil
}

func (c *Client) fullURL(path string) string {
	return c.base.String() + path
}

// newRequest builds a request for path with the configured headers attached.
func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte, accept string) (*http.Request, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		body = bytes.NewReader(payload)
		contentType = config.ContentTypeJSON
	}

	req, err := http.NewRequestWithContext(ctx, method, c.fullURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}

	c.conf.AttachHeaders(req, contentType)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req, nil
}
