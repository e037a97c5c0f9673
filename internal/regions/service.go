package regions

import (
	"fmt"
	"log"
	"sort"

	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/metrics"
)

// Search defaults.
const (
	DefaultNearestLimit      = 10
	DefaultMaxDistanceKm     = 200.0
	bestMatchCandidateRadius = 500.0
	bestMatchFallbackRadius  = 10000.0
)

// Service answers calibration-data queries. Mutation happens only during the
// one-time seed phase, so queries need no locking afterwards.
type Service struct {
	store Store
}

// NewService wraps a durable store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// SeedReport summarizes one initialization pass over the built-in dataset.
type SeedReport struct {
	Inserted int
	Updated  int
	Errors   []string
}

// InitializeDatabase seeds the store from the built-in dataset. Idempotent:
// existing records are updated in place, new ones inserted. Failures are
// retried per record by the store and collected rather than aborting the
// pass; the pass as a whole fails only when nothing was processed cleanly.
func (s *Service) InitializeDatabase() (SeedReport, error) {
	var report SeedReport
	for _, r := range BuiltinDataset() {
		inserted, err := s.store.UpsertRegion(r)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", r.ID, err))
			continue
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	if report.Inserted+report.Updated == 0 {
		return report, fmt.Errorf("seed processed no records (%d errors)", len(report.Errors))
	}
	if len(report.Errors) > 0 {
		return report, fmt.Errorf("seed finished with %d errors: %s", len(report.Errors), report.Errors[0])
	}
	log.Printf("regions: dataset seeded (%d inserted, %d updated)", report.Inserted, report.Updated)
	return report, nil
}

// NearestOptions tunes FindNearestStations.
type NearestOptions struct {
	Limit         int
	MaxDistanceKm float64
	// Quality restricts matches to one grade; empty accepts any.
	Quality    Quality
	ActiveOnly bool
}

// DefaultNearestOptions returns the standard search parameters.
func DefaultNearestOptions() NearestOptions {
	return NearestOptions{
		Limit:         DefaultNearestLimit,
		MaxDistanceKm: DefaultMaxDistanceKm,
		ActiveOnly:    true,
	}
}

// FindNearestStations ranks qualifying regions by great-circle distance from
// the query point, filtered by radius and truncated to the limit. A store
// failure or an empty result both yield an empty slice, never an error:
// lookup misses are fallback triggers, not faults.
func (s *Service) FindNearestStations(coords domain.Coordinates, opts NearestOptions) []Match {
	if opts.Limit <= 0 {
		opts.Limit = DefaultNearestLimit
	}
	if opts.MaxDistanceKm <= 0 {
		opts.MaxDistanceKm = DefaultMaxDistanceKm
	}

	all, err := s.store.ListRegions(opts.ActiveOnly)
	if err != nil {
		log.Printf("regions: nearest-station query degraded to empty result: %v", err)
		return []Match{}
	}

	matches := make([]Match, 0, opts.Limit)
	for _, r := range all {
		if opts.Quality != "" && r.Quality != opts.Quality {
			continue
		}
		d := domain.HaversineKm(coords, r.Coordinates)
		if d > opts.MaxDistanceKm {
			continue
		}
		matches = append(matches, Match{Region: r, DistanceKm: d})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].DistanceKm < matches[j].DistanceKm })
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches
}

// GetBestRegionForCoordinates picks the calibration region for a point:
// first a 3-candidate search within 500 km, then an unrestricted retry for
// the single nearest. Returns nil only when the store holds no usable
// records at all.
func (s *Service) GetBestRegionForCoordinates(coords domain.Coordinates) *Match {
	candidates := s.FindNearestStations(coords, NearestOptions{
		Limit:         3,
		MaxDistanceKm: bestMatchCandidateRadius,
		ActiveOnly:    true,
	})
	if len(candidates) == 0 {
		metrics.CountRegionFallback()
		candidates = s.FindNearestStations(coords, NearestOptions{
			Limit:         1,
			MaxDistanceKm: bestMatchFallbackRadius,
			ActiveOnly:    true,
		})
	}
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// GetRegionsInBounds returns active regions inside the rectangle spanned by
// the northeast and southwest corners.
func (s *Service) GetRegionsInBounds(ne, sw domain.Coordinates) ([]Region, error) {
	if err := ne.Validate(); err != nil {
		return nil, fmt.Errorf("bounds northeast: %w", err)
	}
	if err := sw.Validate(); err != nil {
		return nil, fmt.Errorf("bounds southwest: %w", err)
	}
	found, err := s.store.RegionsInBounds(ne, sw, true)
	if err != nil {
		return nil, fmt.Errorf("regions in bounds: %w", err)
	}
	return found, nil
}

// IntegrityIssue is one audit finding with a remediation hint.
type IntegrityIssue struct {
	Problem string
	Hint    string
}

// IntegrityReport is the outcome of a non-mutating dataset audit.
type IntegrityReport struct {
	RecordCount int
	SeedCount   int
	Issues      []IntegrityIssue
}

// OK reports whether the audit found nothing to fix.
func (r IntegrityReport) OK() bool { return len(r.Issues) == 0 }

// CheckDatabaseIntegrity audits the stored dataset without mutating it:
// record count against the seed, duplicate IDs, out-of-range coordinates and
// implausible base amplitudes.
func (s *Service) CheckDatabaseIntegrity() (IntegrityReport, error) {
	report := IntegrityReport{SeedCount: len(builtinDataset)}

	all, err := s.store.ListRegions(false)
	if err != nil {
		return report, fmt.Errorf("integrity check: %w", err)
	}
	report.RecordCount = len(all)

	if len(all) < len(builtinDataset) {
		report.Issues = append(report.Issues, IntegrityIssue{
			Problem: fmt.Sprintf("store holds %d records, seed defines %d", len(all), len(builtinDataset)),
			Hint:    "run InitializeDatabase to re-seed missing records",
		})
	}

	seen := make(map[string]int, len(all))
	for _, r := range all {
		seen[r.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			report.Issues = append(report.Issues, IntegrityIssue{
				Problem: fmt.Sprintf("region %s appears %d times", id, n),
				Hint:    "deduplicate by region_id; the upsert path should prevent this",
			})
		}
	}

	for _, r := range all {
		if err := r.Coordinates.Validate(); err != nil {
			report.Issues = append(report.Issues, IntegrityIssue{
				Problem: fmt.Sprintf("region %s: %v", r.ID, err),
				Hint:    "re-seed the record from the built-in dataset",
			})
		}
		for name, h := range r.Harmonics {
			if h.AmplitudeCm < 0 || h.AmplitudeCm > 500 {
				report.Issues = append(report.Issues, IntegrityIssue{
					Problem: fmt.Sprintf("region %s: %s amplitude %.1f cm outside [0, 500]", r.ID, name, h.AmplitudeCm),
					Hint:    "re-seed the record; amplitudes above 5 m indicate unit confusion",
				})
			}
		}
	}

	return report, nil
}
