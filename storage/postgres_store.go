package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"visir-watcher/models"
)

// PostgresStore persists the catalog in PostgreSQL, for deployments where a
// shared database beats a JSON file on disk. The schema mirrors the file
// format field for field, with link as the unique key.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, waits for the database to come up,
// and runs the schema migration.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id           SERIAL PRIMARY KEY,
			address      TEXT    NOT NULL,
			price        TEXT    NOT NULL,
			size_m2      TEXT    NOT NULL DEFAULT 'N/A',
			price_per_m2 INTEGER,
			total_rooms  TEXT    NOT NULL DEFAULT 'N/A',
			bedrooms     TEXT    NOT NULL DEFAULT 'N/A',
			link         TEXT    UNIQUE NOT NULL,
			image_url    TEXT,
			has_balcony  BOOLEAN,
			has_terrace  BOOLEAN
		);

		CREATE INDEX IF NOT EXISTS idx_listings_address ON listings(address);
	`)
	return err
}

// Load reads all stored listings in insertion order. Connection or scan
// failures yield an empty catalog plus the diagnostic.
func (ps *PostgresStore) Load() (*Catalog, error) {
	catalog := NewCatalog()

	rows, err := ps.db.Query(`
		SELECT address, price, size_m2, price_per_m2, total_rooms, bedrooms,
		       link, image_url, has_balcony, has_terrace
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return catalog, fmt.Errorf("postgres: load: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := &models.ListingRecord{}
		var pricePerM2 sql.NullInt64
		var imageURL sql.NullString
		var hasBalcony, hasTerrace sql.NullBool

		if err := rows.Scan(
			&rec.Address, &rec.PriceRaw, &rec.SizeM2, &pricePerM2,
			&rec.TotalRooms, &rec.Bedrooms, &rec.Link, &imageURL,
			&hasBalcony, &hasTerrace,
		); err != nil {
			return NewCatalog(), fmt.Errorf("postgres: scan: %w", err)
		}

		if pricePerM2.Valid {
			v := int(pricePerM2.Int64)
			rec.PricePerM2 = &v
		}
		if imageURL.Valid {
			v := imageURL.String
			rec.ImageURL = &v
		}
		if hasBalcony.Valid {
			v := hasBalcony.Bool
			rec.HasBalcony = &v
		}
		if hasTerrace.Valid {
			v := hasTerrace.Bool
			rec.HasTerrace = &v
		}

		if rec.Link == "" || catalog.Contains(rec.Link) {
			continue
		}
		if err := catalog.Append(rec); err != nil {
			return NewCatalog(), fmt.Errorf("postgres: rebuild index: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return NewCatalog(), fmt.Errorf("postgres: load: %w", err)
	}
	return catalog, nil
}

// Save inserts every catalog entry, skipping links already stored. The
// catalog is append-only, so skipping conflicts is equivalent to a full
// overwrite.
func (ps *PostgresStore) Save(c *Catalog) error {
	entries := c.Entries()
	if len(entries) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := ps.insertBatch(entries[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (ps *PostgresStore) insertBatch(batch []*models.ListingRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*10)

	for idx, rec := range batch {
		base := idx * 10
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5,
				base+6, base+7, base+8, base+9, base+10))

		var pricePerM2 interface{}
		if rec.PricePerM2 != nil {
			pricePerM2 = *rec.PricePerM2
		}
		var imageURL interface{}
		if rec.ImageURL != nil {
			imageURL = *rec.ImageURL
		}
		var hasBalcony, hasTerrace interface{}
		if rec.HasBalcony != nil {
			hasBalcony = *rec.HasBalcony
		}
		if rec.HasTerrace != nil {
			hasTerrace = *rec.HasTerrace
		}

		valueArgs = append(valueArgs,
			rec.Address, rec.PriceRaw, rec.SizeM2, pricePerM2,
			rec.TotalRooms, rec.Bedrooms, rec.Link, imageURL,
			hasBalcony, hasTerrace)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (address, price, size_m2, price_per_m2,
		                      total_rooms, bedrooms, link, image_url,
		                      has_balcony, has_terrace)
		VALUES %s
		ON CONFLICT (link) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := ps.db.Exec(query, valueArgs...)
	return err
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
