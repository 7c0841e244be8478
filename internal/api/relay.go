// Package api talks to a running relay server.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bz888/koalagpt/internal/api/server"
	"github.com/bz888/koalagpt/internal/logger"
)

// RelayClient sends chat turns to the relay server at addr.
type RelayClient struct {
	base *url.URL
	http *http.Client
	log  *logger.Logger
}

func NewRelayClient(addr string, hc *http.Client) (*RelayClient, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	base, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid relay address %q: %w", addr, err)
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &RelayClient{base: base, http: hc, log: logger.NewLogger("relay client")}, nil
}

// Chat posts one turn and calls onText for every ndjson line of the reply.
// It returns the whole reply text.
func (c *RelayClient) Chat(ctx context.Context, model, content string, onText func(string)) (string, error) {
	if content == "" {
		c.log.Warn("No content parsed")
		return "", fmt.Errorf("no content to send")
	}

	clientReq := server.ChatRequest{Model: model, Text: content}
	c.log.Info("Input request:", clientReq.Text)
	c.log.Info("Input model:", clientReq.Model)

	requestData, err := json.Marshal(clientReq)
	if err != nil {
		return "", fmt.Errorf("serializing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/chat"), bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")
	req.Header.Set("Connection", "keep-alive")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Error("Failed to close response body:", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		var msg bytes.Buffer
		msg.ReadFrom(resp.Body)
		return "", fmt.Errorf("relay returned %s: %s", resp.Status, strings.TrimSpace(msg.String()))
	}

	scanner := bufio.NewScanner(resp.Body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 512*1024)

	var accumulated strings.Builder
	for scanner.Scan() {
		var clientResp server.ChatResponse
		if err := json.Unmarshal(scanner.Bytes(), &clientResp); err != nil {
			c.log.Error("Failed to decode response:", err)
			continue
		}
		accumulated.WriteString(clientResp.ProcessedText)
		if onText != nil {
			onText(clientResp.ProcessedText)
		}
	}
	if err := scanner.Err(); err != nil {
		return accumulated.String(), fmt.Errorf("reading stream: %w", err)
	}
	return accumulated.String(), nil
}

// Alive reports whether the relay answers its status endpoint.
func (c *RelayClient) Alive(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/status"), nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("Relay server not available:", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *RelayClient) url(path string) string {
	return c.base.ResolveReference(&url.URL{Path: path}).String()
}
