package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"visir-watcher/models"
)

// FileStore persists a Catalog as a JSON array of flat listing objects.
// This is the reference storage format; the file is meant to be readable
// and diffable by hand.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for the given path. The file need not
// exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the catalog file. A missing or empty file yields an empty
// catalog. A malformed file also yields an empty catalog, with the decode
// error returned as a diagnostic — prior contents are abandoned rather than
// crashing the run.
func (fs *FileStore) Load() (*Catalog, error) {
	catalog := NewCatalog()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog, nil
		}
		return catalog, fmt.Errorf("catalog: read %q: %w", fs.path, err)
	}
	if len(data) == 0 {
		return catalog, nil
	}

	var records []*models.ListingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return NewCatalog(), fmt.Errorf("catalog: decode %q: %w", fs.path, err)
	}

	for _, rec := range records {
		if rec.Link == "" {
			continue
		}
		if catalog.Contains(rec.Link) {
			continue
		}
		if err := catalog.Append(rec); err != nil {
			return NewCatalog(), fmt.Errorf("catalog: rebuild index: %w", err)
		}
	}
	return catalog, nil
}

// Save atomically replaces the file with the catalog's full content. The
// data is written to a temp file in the same directory and renamed into
// place, so a failed save never corrupts the previous state.
func (fs *FileStore) Save(c *Catalog) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("catalog: create dir: %w", err)
	}

	records := c.Entries()
	if records == nil {
		records = []*models.ListingRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("catalog: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("catalog: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("catalog: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog: replace %q: %w", fs.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (fs *FileStore) Close() error { return nil }
