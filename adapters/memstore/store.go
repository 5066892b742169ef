package memstore

import (
	"context"
	"sync"
	"time"

	"expdesign/domain/core"
)

type session struct {
	fields      map[string]string
	lastTouched time.Time
}

// Store is the in-process FormStore used when no database is configured.
// Sessions live until Clear or CleanupExpired; a process restart loses
// them, which only resets form pre-fill.
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*session
	now      func() time.Time
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		sessions: make(map[core.SessionID]*session),
		now:      time.Now,
	}
}

// Get returns one field value and whether it was present
func (s *Store) Get(ctx context.Context, id core.SessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return "", false, nil
	}
	v, ok := sess.fields[key]
	return v, ok, nil
}

// GetAll returns a copy of every stored field for a session
func (s *Store) GetAll(ctx context.Context, id core.SessionID) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	if sess, ok := s.sessions[id]; ok {
		for k, v := range sess.fields {
			out[k] = v
		}
	}
	return out, nil
}

// SetAll replaces a session's stored fields and refreshes its idle timer
func (s *Store) SetAll(ctx context.Context, id core.SessionID, fields map[string]string) error {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{fields: copied, lastTouched: s.now()}
	return nil
}

// Clear drops all stored fields for a session
func (s *Store) Clear(ctx context.Context, id core.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// CleanupExpired removes sessions idle longer than olderThan
func (s *Store) CleanupExpired(ctx context.Context, olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.lastTouched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	return nil
}
