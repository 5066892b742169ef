package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"expdesign/domain/core"
	"expdesign/internal/errors"
)

// FormStore persists designer-form session state in Postgres so a
// returning browser gets its form pre-filled across restarts. One row
// per session, the whole field map stored as jsonb.
type FormStore struct {
	db *sqlx.DB
}

// NewFormStore creates a Postgres-backed form store
func NewFormStore(db *sqlx.DB) *FormStore {
	return &FormStore{db: db}
}

// Connect opens and pings a Postgres connection
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "connecting to postgres failed")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// EnsureSchema creates the session-state table if it does not exist
func (s *FormStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS design_form_state (
			session_id uuid PRIMARY KEY,
			fields     jsonb NOT NULL DEFAULT '{}'::jsonb,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.WrapCode(err, errors.CodeDatabaseError, "creating design_form_state failed")
	}
	return nil
}

// Get returns one field value and whether it was present
func (s *FormStore) Get(ctx context.Context, id core.SessionID, key string) (string, bool, error) {
	fields, err := s.GetAll(ctx, id)
	if err != nil {
		return "", false, err
	}
	v, ok := fields[key]
	return v, ok, nil
}

// GetAll returns every stored field for a session
func (s *FormStore) GetAll(ctx context.Context, id core.SessionID) (map[string]string, error) {
	const query = `SELECT fields FROM design_form_state WHERE session_id = $1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(&raw)
	if err == sql.ErrNoRows {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "loading session state failed")
	}

	fields := make(map[string]string)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "decoding session state failed")
	}
	return fields, nil
}

// SetAll replaces a session's stored fields in one upsert
func (s *FormStore) SetAll(ctx context.Context, id core.SessionID, fields map[string]string) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return errors.WrapCode(err, errors.CodeInternalError, "encoding session state failed")
	}

	const query = `
		INSERT INTO design_form_state (session_id, fields, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, id.String(), raw); err != nil {
		return errors.WrapCode(err, errors.CodeDatabaseError, "saving session state failed")
	}
	return nil
}

// Clear drops all stored fields for a session
func (s *FormStore) Clear(ctx context.Context, id core.SessionID) error {
	const query = `DELETE FROM design_form_state WHERE session_id = $1`
	if _, err := s.db.ExecContext(ctx, query, id.String()); err != nil {
		return errors.WrapCode(err, errors.CodeDatabaseError, "clearing session state failed")
	}
	return nil
}

// CleanupExpired removes sessions idle longer than olderThan
func (s *FormStore) CleanupExpired(ctx context.Context, olderThan time.Duration) error {
	const query = `DELETE FROM design_form_state WHERE updated_at < $1`
	cutoff := time.Now().Add(-olderThan)
	if _, err := s.db.ExecContext(ctx, query, cutoff); err != nil {
		return errors.WrapCode(err, errors.CodeDatabaseError, "cleaning up expired sessions failed")
	}
	return nil
}
