// Package domain defines the core domain models for the prompt-forge backend.
package domain

import "time"

// Turn roles as persisted. The wire role "model" used by the LLM call is an
// alias for RoleAssistant and never reaches a store.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultSessionTitle is assigned to a session until title generation succeeds.
const DefaultSessionTitle = "New Session"

// Session represents a user-owned conversation session.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Turn represents a single recorded message in a session. Turns are ordered
// by CreatedAt ascending within their session.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // user, assistant, system
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionMeta is a denormalized session summary kept by the metadata index.
type SessionMeta struct {
	ID        string    `json:"session_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	Preview   string    `json:"preview"`
}
