// Package store defines the session storage contract and its two backends.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jchen2215/promptforge/domain"
)

// SessionStore is the persistence contract for per-session turn history. A
// session's turn sequence is the unit of replacement: SaveHistory atomically
// replaces whatever was stored before.
type SessionStore interface {
	// GetHistory returns the ordered turn sequence for a session. An unknown
	// session yields an empty slice, never an error.
	GetHistory(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// SaveHistory replaces the full turn sequence for a session. The owning
	// user id is recorded when the session is created implicitly; backends
	// without user ownership ignore it.
	SaveHistory(ctx context.Context, sessionID, userID string, turns []domain.Turn) error

	// DeleteHistory removes a session's history. It reports whether anything
	// existed to delete.
	DeleteHistory(ctx context.Context, sessionID string) (bool, error)

	// SessionExists reports whether the session has stored history.
	SessionExists(ctx context.Context, sessionID string) (bool, error)

	// Lifecycle
	Close() error
}

// SanitizeSessionID reduces a session identifier to alphanumerics, '-' and
// '_'. This keeps externally supplied ids safe to use as file names or
// storage keys. An id with no valid characters fails with ErrInvalidIdentifier.
func SanitizeSessionID(sessionID string) (string, error) {
	var b strings.Builder
	for _, r := range sessionID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, sessionID)
	}
	return b.String(), nil
}
