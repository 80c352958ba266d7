package workflow

import "github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"

// State is the data flowing between nodes during one invocation.
//
// Messages starts as a copy of the caller's history; nodes append to it.
// Query and Retrieval belong to this invocation only, so a later node
// never reads context retrieved for an earlier turn.
type State struct {
	Messages  []core.Message
	Query     string
	Retrieval core.RetrievalResult
	Visited   []NodeName
}

func newState(history []core.Message) *State {
	msgs := make([]core.Message, len(history), len(history)+2)
	copy(msgs, history)
	return &State{Messages: msgs}
}

func (s *State) append(msg core.Message) {
	s.Messages = append(s.Messages, msg)
}

// Final returns the last message, which after a complete run is the answer.
func (s *State) Final() (core.Message, bool) {
	if len(s.Messages) == 0 {
		return core.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// lastHuman returns the content of the most recent user-authored message.
func (s *State) lastHuman() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == core.RoleHuman {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}
