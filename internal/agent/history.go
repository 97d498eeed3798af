package agent

import (
	"time"

	"github.com/eventpilot/eventpilot/internal/types"
)

// minWindow is the smallest usable history window: the system message
// plus the latest action/result exchange and the newest turn.
const minWindow = 4

// History holds the ordered conversation of one session. The backing
// list is append-only; windowing happens at read time so the full
// transcript stays available to the session owner.
type History struct {
	messages []types.Message
}

// NewHistory creates a history seeded with the system message.
func NewHistory(systemPrompt string) *History {
	return &History{
		messages: []types.Message{{
			Role:      "system",
			Content:   systemPrompt,
			Timestamp: time.Now(),
		}},
	}
}

// Add appends a message. Messages are never reordered or rewritten.
func (h *History) Add(role, content string) {
	h.messages = append(h.messages, types.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// All returns a copy of the full transcript.
func (h *History) All() []types.Message {
	out := make([]types.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Window returns the messages to send to the reasoning service. With
// max <= 0 the full transcript is returned. Otherwise the system message
// is always kept and the newest messages fill the rest of the window, so
// the latest tool call and its result are always included verbatim.
func (h *History) Window(max int) []types.Message {
	if max <= 0 || len(h.messages) <= max {
		return h.All()
	}
	if max < minWindow {
		max = minWindow
	}

	out := make([]types.Message, 0, max)
	out = append(out, h.messages[0])
	out = append(out, h.messages[len(h.messages)-(max-1):]...)
	return out
}

// Len returns the number of stored messages.
func (h *History) Len() int {
	return len(h.messages)
}
