package ports

import (
	"context"
	"time"

	"expdesign/domain/core"
)

// FormStore is the ephemeral key-value session store that pre-fills the
// designer form between page loads. It holds nothing the calculators
// depend on: clearing a session only resets the form.
type FormStore interface {
	// Get returns one field value and whether it was present
	Get(ctx context.Context, session core.SessionID, key string) (string, bool, error)

	// GetAll returns every stored field for a session; empty map when the
	// session has no saved state
	GetAll(ctx context.Context, session core.SessionID) (map[string]string, error)

	// SetAll replaces a session's stored fields in one write
	SetAll(ctx context.Context, session core.SessionID, fields map[string]string) error

	// Clear drops all stored fields for a session
	Clear(ctx context.Context, session core.SessionID) error

	// CleanupExpired removes sessions idle longer than olderThan
	CleanupExpired(ctx context.Context, olderThan time.Duration) error
}
