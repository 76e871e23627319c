package voice

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultContextSize is how many raw messages the parser remembers
const DefaultContextSize = 10

const noPriorContext = "(No prior context)"

// History is a bounded FIFO of raw voice messages, oldest first
type History struct {
	capacity int
	messages []string
}

// NewHistory creates a history holding at most capacity messages
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultContextSize
	}
	return &History{capacity: capacity}
}

// Add appends a message, dropping the oldest once capacity is exceeded
func (h *History) Add(message string) {
	h.messages = append(h.messages, message)
	if over := len(h.messages) - h.capacity; over > 0 {
		h.messages = append([]string(nil), h.messages[over:]...)
	}
}

// Messages returns a copy of the stored messages, oldest first
func (h *History) Messages() []string {
	return append([]string(nil), h.messages...)
}

func (h *History) Len() int {
	return len(h.messages)
}

// Context renders every message but the latest as "- msg" lines
func (h *History) Context() string {
	if len(h.messages) <= 1 {
		return noPriorContext
	}
	lines := make([]string, 0, len(h.messages)-1)
	for _, msg := range h.messages[:len(h.messages)-1] {
		lines = append(lines, "- "+msg)
	}
	return strings.Join(lines, "\n")
}

// Session is the mutable state of one watcher run
type Session struct {
	ID          string
	LastContent string
	History     *History
}

// NewSession creates an empty session with a history of contextSize messages
func NewSession(contextSize int) *Session {
	return &Session{
		ID:      uuid.NewString(),
		History: NewHistory(contextSize),
	}
}
