package core

import "sync"

// History is the ordered message list of one session.
//
// Messages are only ever appended. Reads return copies so callers can
// never reorder or drop entries.
type History struct {
	sessionID string

	mu       sync.RWMutex
	messages []Message

	// turn serializes whole query/answer exchanges on this session.
	turn sync.Mutex
}

// NewHistory creates an empty history for sessionID.
func NewHistory(sessionID string) *History {
	return &History{sessionID: sessionID}
}

// SessionID returns the session this history belongs to.
func (h *History) SessionID() string {
	return h.sessionID
}

// Append adds msg to the end of the history.
func (h *History) Append(msg Message) {
	h.mu.Lock()
	h.messages = append(h.messages, msg)
	h.mu.Unlock()
}

// Messages returns a copy of the history in append order.
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Last returns the most recent message.
func (h *History) Last() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// BeginTurn blocks until no other turn is in flight on this session and
// returns the function that ends the turn.
func (h *History) BeginTurn() func() {
	h.turn.Lock()
	return h.turn.Unlock
}
