package storage

import (
	"errors"
	"fmt"

	"visir-watcher/models"
)

// ErrDuplicateLink is returned when appending a record whose link is already
// in the catalog. Callers check Contains first; the error is a guard against
// violating the one-entry-per-link invariant.
var ErrDuplicateLink = errors.New("catalog: link already present")

// Catalog is the cross-run collection of every listing ever accepted, keyed
// by link. Within a run it is append-only: existing entries are never
// mutated, new ones are added at the end.
type Catalog struct {
	entries []*models.ListingRecord
	index   map[string]struct{}
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]struct{})}
}

// Contains reports whether a record with the given link has been accepted
// before. O(1) against the in-memory index.
func (c *Catalog) Contains(link string) bool {
	_, ok := c.index[link]
	return ok
}

// Append adds a record to the catalog. The record must carry a non-empty
// link and must not already be present.
func (c *Catalog) Append(rec *models.ListingRecord) error {
	if rec.Link == "" {
		return errors.New("catalog: record has empty link")
	}
	if c.Contains(rec.Link) {
		return fmt.Errorf("%w: %s", ErrDuplicateLink, rec.Link)
	}
	c.entries = append(c.entries, rec)
	c.index[rec.Link] = struct{}{}
	return nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the backing slice in insertion order. Callers must not
// modify it.
func (c *Catalog) Entries() []*models.ListingRecord {
	return c.entries
}
