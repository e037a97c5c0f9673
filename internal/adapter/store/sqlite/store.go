// Package sqlite is the durable store for the calibration dataset and the
// result cache. A single SQLite database in WAL mode backs both tables; the
// engine works read-mostly after the one-time seed, so contention is rare
// but transient errors are still retried.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the shared SQLite handle.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS regions (
		region_id        TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		latitude         REAL NOT NULL,
		longitude        REAL NOT NULL,
		m2_amp_cm        REAL NOT NULL,
		m2_phase_deg     REAL NOT NULL,
		s2_amp_cm        REAL NOT NULL,
		s2_phase_deg     REAL NOT NULL,
		k1_amp_cm        REAL,
		k1_phase_deg     REAL,
		o1_amp_cm        REAL,
		o1_phase_deg     REAL,
		depth_m          REAL NOT NULL,
		region_type      TEXT NOT NULL CHECK (region_type IN ('open','bay','strait')),
		bay_length_km    REAL,
		ocean_dist_km    REAL,
		data_quality     TEXT NOT NULL CHECK (data_quality IN ('high','medium','low')),
		is_active        INTEGER NOT NULL DEFAULT 1,
		coverage_km      REAL NOT NULL,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_regions_latlon ON regions(latitude, longitude);

	CREATE TABLE IF NOT EXISTS tide_cache (
		cache_key    TEXT PRIMARY KEY,
		data         TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		expires_at   TEXT NOT NULL,
		access_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_tide_cache_expires ON tide_cache(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}
