package client

import "github.com/google/uuid"

const (
	ContentTypeText  = "text"
	ActionAsk        = "_ask"
	JailbreakDefault = "default"
)

// newConversationID is replaced in tests.
var newConversationID = uuid.NewString

type BuildOption func(*ConversationRequest)

func WithInternetAccess(enabled bool) BuildOption {
	return func(r *ConversationRequest) {
		for i := range r.Meta {
			r.Meta[i].Content.InternetAccess = enabled
		}
	}
}

func WithVoice(voice string) BuildOption {
	return func(r *ConversationRequest) {
		for i := range r.Meta {
			r.Meta[i].Content.Voice = &voice
		}
	}
}

// WithConversationID continues an existing conversation instead of starting
// a new one.
func WithConversationID(id string) BuildOption {
	return func(r *ConversationRequest) {
		r.ConversationID = id
	}
}

func WithJailbreak(mode string) BuildOption {
	return func(r *ConversationRequest) {
		r.Jailbreak = mode
	}
}

// NewConversationRequest fills in the structure the /unity endpoints expect
// around the caller's turns. Inputs are used as given.
func NewConversationRequest(p PromptRequest, opts ...BuildOption) ConversationRequest {
	parts := make([]Part, len(p.Messages))
	copy(parts, p.Messages)

	req := ConversationRequest{
		Model:  p.Model,
		Action: ActionAsk,
		Meta: []Meta{
			{
				Content: Content{
					ContentType:    ContentTypeText,
					InternetAccess: false,
					Voice:          p.Voice,
					Parts:          parts,
				},
			},
		},
		ConversationID: newConversationID(),
		Jailbreak:      JailbreakDefault,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// NewPromptRequest wraps a single user prompt.
func NewPromptRequest(model, text string) PromptRequest {
	return PromptRequest{
		Model:    model,
		Messages: []Part{{Role: RoleUser, Content: text}},
	}
}

// NewChatRequest builds a chat completion request from plain turns.
func NewChatRequest(model string, turns ...Part) ChatCompletionRequest {
	messages := make([]ChatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ChatMessage{Role: t.Role, Content: t.Content})
	}
	return ChatCompletionRequest{Model: model, Messages: messages}
}
