package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageRole is the closed set of roles a chat message can carry
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether the role is one of the known variants
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Conversation is a chat thread tied to a dispute
type Conversation struct {
	ID            uuid.UUID `json:"id"`
	DisputeID     uuid.UUID `json:"dispute_id"`
	UserID        uuid.UUID `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Source is one retrieved passage cited by an assistant message. The
// list order matches the [1]..[K] markers used in the message content.
type Source struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
}

// SourceList is the JSONB-persisted list of sources on a message
type SourceList []Source

// Value implements driver.Valuer for JSONB
func (s SourceList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *SourceList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SourceList", value)
	}

	if len(bytes) == 0 {
		*s = nil
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Message is a single chat turn. Messages are append-only and read
// back in creation order.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	DisputeID      uuid.UUID   `json:"dispute_id"`
	UserID         uuid.UUID   `json:"user_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Sources        SourceList  `json:"sources,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}
