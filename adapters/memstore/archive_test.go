package memstore

import (
	"context"
	"testing"
	"time"

	"expdesign/domain/core"
	"expdesign/domain/experiment"
	"expdesign/internal/errors"
)

func archivedDoc(name string, at time.Time) *experiment.DesignDoc {
	return &experiment.DesignDoc{
		ID:        core.DesignID(core.NewID()),
		Name:      name,
		CreatedAt: core.NewTimestamp(at),
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	archive := NewArchive()

	doc := archivedDoc("Dynamic CTA Text", time.Now())
	if err := archive.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := archive.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Dynamic CTA Text" {
		t.Errorf("name = %q", got.Name)
	}

	// The archive hands out copies, not aliases.
	got.Name = "mutated"
	again, _ := archive.Get(ctx, doc.ID)
	if again.Name != "Dynamic CTA Text" {
		t.Error("mutating a returned design should not affect the stored one")
	}
}

func TestArchiveGetUnknown(t *testing.T) {
	archive := NewArchive()
	_, err := archive.Get(context.Background(), core.DesignID(core.NewID()))
	if errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestArchiveListRecent(t *testing.T) {
	ctx := context.Background()
	archive := NewArchive()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"oldest", "middle", "newest"} {
		if err := archive.Save(ctx, archivedDoc(name, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	recent, err := archive.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d designs, want 2", len(recent))
	}
	if recent[0].Name != "newest" || recent[1].Name != "middle" {
		t.Errorf("order = [%s, %s], want newest first", recent[0].Name, recent[1].Name)
	}
}
