package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	DesignID  ID
	SessionID ID
)

func (id DesignID) String() string  { return ID(id).String() }
func (id SessionID) String() string { return ID(id).String() }

// NewSessionID creates a fresh browser session identifier
func NewSessionID() SessionID {
	return SessionID(NewID())
}

// ParseDesignID parses a string into DesignID
func ParseDesignID(s string) (DesignID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("design ID cannot be empty")
	}
	return DesignID(s), nil
}

// ParseSessionID parses a string into SessionID. Session IDs arrive from
// cookies, so anything non-UUID is rejected before it reaches storage.
func ParseSessionID(s string) (SessionID, error) {
	if _, err := uuid.Parse(strings.TrimSpace(s)); err != nil {
		return "", fmt.Errorf("session ID must be a UUID: %w", err)
	}
	return SessionID(strings.TrimSpace(s)), nil
}
