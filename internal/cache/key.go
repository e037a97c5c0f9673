// Package cache memoizes finished tide results in a bounded, time-expiring
// LRU structure with an optional durable backing store.
package cache

import (
	"fmt"
	"math"
	"time"

	"go.ngs.io/tide-engine/internal/domain"
)

// Key identifies one cached result before canonicalization.
type Key struct {
	Coordinates domain.Coordinates
	Date        time.Time
}

// NormalizeKey canonicalizes a key: coordinates are rounded to 0.01 degrees
// (about 1.1 km) and the date collapses to its zero-padded calendar day.
// Two raw requests within rounding tolerance on the same day collide to the
// same string on purpose.
func NormalizeKey(k Key) (string, error) {
	if err := k.Coordinates.Validate(); err != nil {
		return "", fmt.Errorf("normalize key: %w", err)
	}
	if k.Date.IsZero() {
		return "", fmt.Errorf("normalize key: zero date")
	}

	lat := math.Round(k.Coordinates.Latitude*100) / 100
	lon := math.Round(k.Coordinates.Longitude*100) / 100
	return fmt.Sprintf("%.2f,%.2f,%s", lat, lon, k.Date.Format("2006-01-02")), nil
}
