package ports

import (
	"context"

	"expdesign/domain/core"
	"expdesign/domain/experiment"
)

// DesignArchive keeps completed design documents so owners can revisit
// or re-download them. Documents are immutable once saved.
type DesignArchive interface {
	// Save stores one design document
	Save(ctx context.Context, doc *experiment.DesignDoc) error

	// Get returns a stored design by ID
	Get(ctx context.Context, id core.DesignID) (*experiment.DesignDoc, error)

	// ListRecent returns up to limit designs, newest first
	ListRecent(ctx context.Context, limit int) ([]*experiment.DesignDoc, error)
}
