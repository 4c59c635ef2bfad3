package storage

// CatalogStore is the durable home of a Catalog between runs.
//
// Load is best-effort: a missing or empty store yields an empty Catalog and
// a nil error; an unreadable or corrupt store yields an empty Catalog and a
// non-nil diagnostic, and the caller decides whether to proceed. Load never
// returns a nil Catalog.
//
// Save persists the full catalog content all-or-nothing: a failed save must
// leave the previous content intact.
type CatalogStore interface {
	Load() (*Catalog, error)
	Save(c *Catalog) error
	Close() error
}
