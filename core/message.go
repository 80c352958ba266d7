package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	// RoleHuman marks a message typed by the user.
	RoleHuman Role = "human"

	// RoleAssistant marks a generated answer.
	RoleAssistant Role = "assistant"

	// RoleSystem marks system-generated messages such as retrieved context.
	RoleSystem Role = "system"
)

// Metadata keys set on system-generated messages.
const (
	MetaKind             = "kind"
	KindRetrievedContext = "retrieved_context"
	MetaNode             = "node"
)

// Message is a single conversational turn.
// Messages are values and are never modified once created.
type Message struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewMessage creates a message with a fresh ID and timestamp.
func NewMessage(role Role, content string, metadata map[string]string) Message {
	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
		Metadata:  meta,
	}
}

// NewHumanMessage creates a user-authored message.
func NewHumanMessage(content string) Message {
	return NewMessage(RoleHuman, content, nil)
}

// NewAssistantMessage creates a generated answer message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content, nil)
}

// Meta returns the metadata value for key, or "" if unset.
func (m Message) Meta(key string) string {
	return m.Metadata[key]
}
