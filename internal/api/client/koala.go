package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bz888/koalagpt/internal/speech"
	"github.com/go-audio/audio"
)

const (
	completionPath  = "/conversation"
	chatStreamPath  = "/conversations"
	unityPath       = "/unity"
	unityVoicePath  = "/unity/voice"
	moderationPath  = "/moderations"
	acceptPlainText = "text/plain"
	acceptWAV       = "audio/wav"
)

// CreateCompletion sends a text completion request and returns the decoded
// reply. A service error is returned in the Result, not as err.
func (c *Client) CreateCompletion(ctx context.Context, req CompletionRequest) (Result[CompletionResponse], error) {
	req.Stream = false
	return dispatchResult[CompletionResponse](ctx, c, http.MethodPost, completionPath, req)
}

// CreateCompletionStream streams a text completion. onFrame receives the
// frames decoded by each poll; onComplete runs once when the stream ends.
func (c *Client) CreateCompletionStream(
	ctx context.Context,
	req CompletionRequest,
	onFrame func([]CompletionResponse),
	onComplete func(),
) error {
	req.Stream = true
	return dispatchStream[CompletionResponse](ctx, c, http.MethodPost, completionPath, req, onFrame, onComplete)
}

func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (Result[ChatCompletionResponse], error) {
	req.Stream = false
	return dispatchResult[ChatCompletionResponse](ctx, c, http.MethodPost, completionPath, req)
}

// CreateChatCompletionStream streams a chat completion, see
// CreateCompletionStream.
func (c *Client) CreateChatCompletionStream(
	ctx context.Context,
	req ChatCompletionRequest,
	onFrame func([]ChatCompletionResponse),
	onComplete func(),
) error {
	req.Stream = true
	return dispatchStream[ChatCompletionResponse](ctx, c, http.MethodPost, chatStreamPath, req, onFrame, onComplete)
}

// CreateChatCompletionSimple posts a conversation request and returns the
// reply text as sent by the service.
func (c *Client) CreateChatCompletionSimple(ctx context.Context, req ConversationRequest) (string, error) {
	body, err := c.dispatchText(ctx, unityPath, req, acceptPlainText)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) CreateChatCompletionSimplePrompt(ctx context.Context, p PromptRequest, opts ...BuildOption) (string, error) {
	return c.CreateChatCompletionSimple(ctx, NewConversationRequest(p, opts...))
}

// CreateSpeechPrompt asks for a spoken reply and decodes the returned WAV
// clip.
func (c *Client) CreateSpeechPrompt(ctx context.Context, p PromptRequest, opts ...BuildOption) (*audio.IntBuffer, error) {
	req := NewConversationRequest(p, opts...)

	body, err := c.dispatchText(ctx, unityVoicePath, req, acceptWAV)
	if err != nil {
		return nil, err
	}

	buf, err := speech.Decode(body)
	if err != nil {
		c.log.Errorw("voice reply decode failed", "path", unityVoicePath, "bytes", len(body), "error", err)
		return nil, fmt.Errorf("decoding voice reply: %w", err)
	}
	return buf, nil
}

func (c *Client) CreateModeration(ctx context.Context, req ModerationRequest) (Result[ModerationResponse], error) {
	return dispatchResult[ModerationResponse](ctx, c, http.MethodPost, moderationPath, req)
}
