package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"go.ngs.io/tide-engine/internal/cache"
)

// GetEntry returns a cached record by canonical key, or nil when absent.
func (s *Store) GetEntry(key string) (*cache.Entry, error) {
	var (
		e                    cache.Entry
		createdAt, expiresAt string
	)
	err := s.db.QueryRow(
		`SELECT cache_key, data, created_at, expires_at, access_count
		 FROM tide_cache WHERE cache_key = ?`, key,
	).Scan(&e.Key, &e.Data, &createdAt, &expiresAt, &e.AccessCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry %s: %w", key, err)
	}

	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("cache entry %s: bad created_at: %w", key, err)
	}
	if e.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt); err != nil {
		return nil, fmt.Errorf("cache entry %s: bad expires_at: %w", key, err)
	}
	return &e, nil
}

// PutEntry inserts or overwrites a cached record.
func (s *Store) PutEntry(e cache.Entry) error {
	err := retryOnContention(func() error {
		_, err := s.db.Exec(
			`INSERT INTO tide_cache (cache_key, data, created_at, expires_at, access_count)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(cache_key) DO UPDATE SET
				data = excluded.data,
				created_at = excluded.created_at,
				expires_at = excluded.expires_at,
				access_count = excluded.access_count`,
			e.Key, e.Data,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
			e.ExpiresAt.UTC().Format(time.RFC3339Nano),
			e.AccessCount,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("put cache entry %s: %w", e.Key, err)
	}
	return nil
}

// DeleteEntry removes a cached record by key. Absent keys are not an error.
func (s *Store) DeleteEntry(key string) error {
	err := retryOnContention(func() error {
		_, err := s.db.Exec(`DELETE FROM tide_cache WHERE cache_key = ?`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteExpired purges every record past its expiry and reports the count.
func (s *Store) DeleteExpired(now time.Time) (int, error) {
	var n int64
	err := retryOnContention(func() error {
		res, err := s.db.Exec(
			`DELETE FROM tide_cache WHERE expires_at <= ?`,
			now.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", err)
	}
	return int(n), nil
}

// ClearEntries empties the cache table.
func (s *Store) ClearEntries() error {
	err := retryOnContention(func() error {
		_, err := s.db.Exec(`DELETE FROM tide_cache`)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear cache entries: %w", err)
	}
	return nil
}
