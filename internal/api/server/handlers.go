package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bz888/koalagpt/internal/api/client"
	"github.com/bz888/koalagpt/internal/config"
)

// ProcessTextHandler relays one chat turn. The reply is streamed as ndjson
// and, once complete, added to the history together with the user turn.
func (s *Server) ProcessTextHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var clientReq ChatRequest
	err := json.NewDecoder(r.Body).Decode(&clientReq)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(clientReq.Text) == "" {
		s.log.Warn("No content parsed")
		http.Error(w, "No content parsed", http.StatusBadRequest)
		return
	}
	if clientReq.Model == "" {
		clientReq.Model = config.DefaultModel
	}

	s.log.Info("Input request:", clientReq.Text)
	s.log.Info("Input model:", clientReq.Model)

	userTurn := client.Part{Role: client.RoleUser, Content: clientReq.Text}
	turns := append(s.history.Snapshot(), userTurn)

	if !clientReq.streaming() {
		s.processSimple(w, r, clientReq.Model, turns)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	encoder := json.NewEncoder(w)
	var accumulated strings.Builder
	wrote := false
	var writeErr error

	err = s.client.CreateChatCompletionStream(r.Context(), client.NewChatRequest(clientReq.Model, turns...),
		func(batch []client.ChatCompletionResponse) {
			if writeErr != nil {
				return
			}
			for _, frame := range batch {
				text := frame.Text()
				if text == "" {
					continue
				}
				accumulated.WriteString(text)
				if writeErr = encoder.Encode(ChatResponse{ProcessedText: text}); writeErr != nil {
					return
				}
				wrote = true
			}
			if wrote {
				flusher.Flush()
			}
		},
		func() {
			s.log.Debugw("relay stream completed", "bytes", accumulated.Len())
		},
	)

	switch {
	case err != nil:
		s.log.Error("Error from chat stream:", err)
		if !wrote {
			http.Error(w, "Failed to process request: "+err.Error(), http.StatusBadGateway)
		}
		return
	case writeErr != nil:
		s.log.Error("Failed to encode response:", writeErr)
		return
	case r.Context().Err() != nil:
		s.log.Warn("Client disconnected, reply not kept")
		return
	}

	s.history.Append(userTurn, client.Part{Role: client.RoleAssistant, Content: accumulated.String()})
	s.log.Debugw("chat history updated", "turns", s.history.Len())
}

func (s *Server) processSimple(w http.ResponseWriter, r *http.Request, model string, turns []client.Part) {
	reply, err := s.client.CreateChatCompletionSimplePrompt(r.Context(),
		client.PromptRequest{Model: model, Messages: turns},
		client.WithInternetAccess(s.internet),
	)
	if err != nil {
		s.log.Error("Error from simple chat:", err)
		http.Error(w, "Failed to process request: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	if err := json.NewEncoder(w).Encode(ChatResponse{ProcessedText: reply}); err != nil {
		s.log.Error("Failed to encode response:", err)
		return
	}

	s.history.Append(turns[len(turns)-1], client.Part{Role: client.RoleAssistant, Content: reply})
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.history.Snapshot()); err != nil {
			http.Error(w, "Failed to encode response: "+err.Error(), http.StatusInternalServerError)
		}
	case http.MethodDelete:
		s.history.Reset()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := statusResponse{
		PortWorking:   true,
		ServerWorking: true,
		HistorySize:   s.history.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.log.Error("Failed to encode status:", err)
	}
}
