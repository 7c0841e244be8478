package server

import (
	"sync"

	"github.com/bz888/koalagpt/internal/api/client"
)

// History is the conversation shared by every /chat request of one server.
type History struct {
	mu    sync.Mutex
	turns []client.Part
}

func (h *History) Append(turns ...client.Part) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turns...)
}

// Snapshot returns a copy of the turns so far.
func (h *History) Snapshot() []client.Part {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]client.Part, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}
