package client

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part is one conversation turn.
type Part struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PromptRequest is the minimal caller input for the conversational
// endpoints. NewConversationRequest expands it into a ConversationRequest.
type PromptRequest struct {
	Model    string  `json:"model"`
	Messages []Part  `json:"messages,omitempty"`
	Voice    *string `json:"voice,omitempty"`
}

type Content struct {
	ContentType    string   `json:"content_type"`
	Conversation   []string `json:"conversation,omitempty"`
	InternetAccess bool     `json:"internet_access"`
	Voice          *string  `json:"voice,omitempty"`
	Parts          []Part   `json:"parts,omitempty"`
}

type Meta struct {
	ID      int     `json:"id"`
	Content Content `json:"content"`
}

// ConversationRequest is the request body of the /unity endpoints.
type ConversationRequest struct {
	Model          string `json:"model"`
	Action         string `json:"action"`
	Meta           []Meta `json:"meta,omitempty"`
	ConversationID string `json:"conversation_id"`
	Jailbreak      string `json:"jailbreak"`
	Stream         *bool  `json:"stream,omitempty"`
}

// CompletionRequest is the request body of the text completion endpoint.
type CompletionRequest struct {
	Model            string    `json:"model"`
	Prompt           *string   `json:"prompt,omitempty"`
	Messages         []Part    `json:"messages,omitempty"`
	Suffix           *string   `json:"suffix,omitempty"`
	MaxTokens        *int      `json:"max_tokens,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	N                *int      `json:"n,omitempty"`
	Stop             []string  `json:"stop,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	LogitBias        LogitBias `json:"logit_bias,omitempty"`
	User             *string   `json:"user,omitempty"`
	Stream           bool      `json:"stream,omitempty"`
}

type LogitBias map[string]int

type ChatMessage struct {
	Role    string  `json:"role"`
	Content string  `json:"content"`
	Name    *string `json:"name,omitempty"`
}

// ChatCompletionRequest is the request body of the chat endpoints.
type ChatCompletionRequest struct {
	Model            string        `json:"model"`
	Messages         []ChatMessage `json:"messages,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	Temperature      *float64      `json:"temperature,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	N                *int          `json:"n,omitempty"`
	Stop             []string      `json:"stop,omitempty"`
	PresencePenalty  *float64      `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
	LogitBias        LogitBias     `json:"logit_bias,omitempty"`
	User             *string       `json:"user,omitempty"`
	Stream           bool          `json:"stream,omitempty"`
}

type ModerationRequest struct {
	Input []string `json:"input,omitempty"`
	Model *string  `json:"model,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type CompletionChoice struct {
	Text         string  `json:"text"`
	Index        int     `json:"index"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// CompletionResponse is one completion reply, or one frame of a completion
// stream. Message carries the plain text reply some models answer with.
type CompletionResponse struct {
	ID      string             `json:"id,omitempty"`
	Object  string             `json:"object,omitempty"`
	Created int64              `json:"created,omitempty"`
	Model   string             `json:"model,omitempty"`
	Message string             `json:"message,omitempty"`
	Choices []CompletionChoice `json:"choices,omitempty"`
	Usage   *Usage             `json:"usage,omitempty"`
}

// Text returns the reply text of the first choice, or Message when the
// service answered without choices.
func (r CompletionResponse) Text() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].Text
	}
	return r.Message
}

type ChatChoice struct {
	Message      *ChatMessage `json:"message,omitempty"`
	Delta        *ChatDelta   `json:"delta,omitempty"`
	Index        int          `json:"index"`
	FinishReason *string      `json:"finish_reason,omitempty"`
}

// ChatDelta is the incremental message of a streamed chat frame.
type ChatDelta struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

type ChatCompletionResponse struct {
	ID      string       `json:"id,omitempty"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created,omitempty"`
	Model   string       `json:"model,omitempty"`
	Message string       `json:"message,omitempty"`
	Choices []ChatChoice `json:"choices,omitempty"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// Text returns the text carried by the first choice: the delta content of a
// streamed frame, the message content of a whole reply, or Message when there
// are no choices.
func (r ChatCompletionResponse) Text() string {
	if len(r.Choices) == 0 {
		return r.Message
	}
	c := r.Choices[0]
	switch {
	case c.Delta != nil && c.Delta.Content != nil:
		return *c.Delta.Content
	case c.Message != nil:
		return c.Message.Content
	}
	return ""
}

type ModerationCategories map[string]bool

type ModerationCategoryScores map[string]float64

type ModerationResult struct {
	Flagged        bool                     `json:"flagged"`
	Categories     ModerationCategories     `json:"categories,omitempty"`
	CategoryScores ModerationCategoryScores `json:"category_scores,omitempty"`
}

type ModerationResponse struct {
	ID      string             `json:"id,omitempty"`
	Model   string             `json:"model,omitempty"`
	Results []ModerationResult `json:"results,omitempty"`
}
