package server

// ChatRequest is the request body of POST /chat.
type ChatRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	// Stream defaults to true. With false the reply is sent as one ndjson
	// line built from the simplified conversational endpoint.
	Stream *bool `json:"stream,omitempty"`
}

func (r ChatRequest) streaming() bool {
	return r.Stream == nil || *r.Stream
}

// ChatResponse is one ndjson line of a /chat reply.
type ChatResponse struct {
	ProcessedText string `json:"processedText"`
}

type statusResponse struct {
	PortWorking   bool `json:"port_working"`
	ServerWorking bool `json:"server_working"`
	HistorySize   int  `json:"history_size"`
}
