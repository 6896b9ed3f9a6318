package domain

import (
	"strings"
	"time"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// ChatMessage is a single immutable entry in the session's conversation log.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PromptMessage is the provider-agnostic message shape handed to LLM
// integrations. Role is "user" or "model"; providers map it to their own names.
type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript flattens a conversation log into "ROLE: content" lines.
func Transcript(messages []ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, strings.ToUpper(string(m.Role))+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
