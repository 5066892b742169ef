package memstore

import (
	"context"
	"sort"
	"sync"

	"expdesign/domain/core"
	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

// Archive is the in-process DesignArchive. Documents survive only for
// the life of the process.
type Archive struct {
	mu   sync.RWMutex
	docs map[core.DesignID]*experiment.DesignDoc
}

// NewArchive creates an empty in-memory archive
func NewArchive() *Archive {
	return &Archive{docs: make(map[core.DesignID]*experiment.DesignDoc)}
}

// Save stores one design document
func (a *Archive) Save(ctx context.Context, doc *experiment.DesignDoc) error {
	if doc.ID.String() == "" {
		return errors.InvalidField("design_id", "cannot be empty")
	}
	copied := *doc
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs[doc.ID] = &copied
	return nil
}

// Get returns a stored design by ID
func (a *Archive) Get(ctx context.Context, id core.DesignID) (*experiment.DesignDoc, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	doc, ok := a.docs[id]
	if !ok {
		return nil, errors.NotFound("design " + id.String())
	}
	copied := *doc
	return &copied, nil
}

// ListRecent returns up to limit designs, newest first
func (a *Archive) ListRecent(ctx context.Context, limit int) ([]*experiment.DesignDoc, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*experiment.DesignDoc, 0, len(a.docs))
	for _, doc := range a.docs {
		copied := *doc
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[j].CreatedAt.Before(out[i].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
