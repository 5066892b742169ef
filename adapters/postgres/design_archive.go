package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"expdesign/domain/core"
	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// DesignArchive persists design documents in Postgres. The document is
// stored whole as jsonb; name and created_at are lifted into columns for
// listing without decoding every row.
type DesignArchive struct {
	db *sqlx.DB
}

// NewDesignArchive creates a Postgres-backed design archive
func NewDesignArchive(db *sqlx.DB) *DesignArchive {
	return &DesignArchive{db: db}
}

// EnsureSchema creates the archive table if it does not exist
func (a *DesignArchive) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS design_archive (
			id         uuid PRIMARY KEY,
			name       text NOT NULL,
			doc        jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`
	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return errors.WrapCode(err, errors.CodeDatabaseError, "creating design_archive failed")
	}
	return nil
}

// Save stores one design document
func (a *DesignArchive) Save(ctx context.Context, doc *experiment.DesignDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.WrapCode(err, errors.CodeInternalError, "encoding design failed")
	}

	const query = `
		INSERT INTO design_archive (id, name, doc, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	if _, err := a.db.ExecContext(ctx, query,
		doc.ID.String(), doc.Name, raw, doc.CreatedAt.Time()); err != nil {
		return errors.WrapCode(err, errors.CodeDatabaseError, "saving design failed")
	}
	return nil
}

// Get returns a stored design by ID
func (a *DesignArchive) Get(ctx context.Context, id core.DesignID) (*experiment.DesignDoc, error) {
	const query = `SELECT doc FROM design_archive WHERE id = $1`

	var raw []byte
	err := a.db.QueryRowContext(ctx, query, id.String()).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("design " + id.String())
	}
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "loading design failed")
	}

	var doc experiment.DesignDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "decoding design failed")
	}
	return &doc, nil
}

// ListRecent returns up to limit designs, newest first
func (a *DesignArchive) ListRecent(ctx context.Context, limit int) ([]*experiment.DesignDoc, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = `SELECT doc FROM design_archive ORDER BY created_at DESC LIMIT $1`

	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "listing designs failed")
	}
	defer rows.Close()

	var out []*experiment.DesignDoc
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.WrapCode(err, errors.CodeDatabaseError, "scanning design row failed")
		}
		var doc experiment.DesignDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.WrapCode(err, errors.CodeDatabaseError, "decoding design failed")
		}
		out = append(out, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapCode(err, errors.CodeDatabaseError, "listing designs failed")
	}
	return out, nil
}
