// Package usecase orchestrates the calculation pipeline: region lookup,
// base-harmonic synthesis, regional correction, harmonic analysis and
// astronomical classification, with an LRU cache in front.
package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"go.ngs.io/tide-engine/internal/astro"
	"go.ngs.io/tide-engine/internal/cache"
	"go.ngs.io/tide-engine/internal/correction"
	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/metrics"
	"go.ngs.io/tide-engine/internal/regions"
)

// ErrNotInitialized is returned when the service is used before Initialize
// has completed successfully.
var ErrNotInitialized = errors.New("tide service not initialized")

// GridSource supplies base harmonics from local gridded data. Optional; the
// regional dataset is used when no grid is configured or a lookup fails.
type GridSource interface {
	Available() bool
	LoadForLocation(coords domain.Coordinates) ([]domain.HarmonicConstant, error)
}

// Service is the engine facade. Construct once with NewService, call
// Initialize, then CalculateTideInfo from any number of goroutines.
type Service struct {
	regions    *regions.Service
	correction *correction.Engine
	cache      *cache.LRU
	grid       GridSource

	initOnce sync.Once
	initErr  error

	mu        sync.RWMutex
	ready     bool
	regionAll []regions.Region
}

// NewService wires the facade. grid may be nil.
func NewService(regionSvc *regions.Service, engine *correction.Engine, lru *cache.LRU, grid GridSource) *Service {
	return &Service{
		regions:    regionSvc,
		correction: engine,
		cache:      lru,
		grid:       grid,
	}
}

// Initialize seeds the regional dataset and loads the full region list into
// memory. It runs the underlying work exactly once; every caller gets the
// outcome of that first run.
func (s *Service) Initialize() error {
	s.initOnce.Do(func() {
		report, err := s.regions.InitializeDatabase()
		if err != nil {
			s.initErr = fmt.Errorf("initialize regional dataset: %w", err)
			return
		}
		if len(report.Errors) > 0 {
			log.Printf("regional seed completed with %d record errors: %v", len(report.Errors), report.Errors)
		}

		all, err := s.regions.GetRegionsInBounds(
			domain.Coordinates{Latitude: 90, Longitude: 180},
			domain.Coordinates{Latitude: -90, Longitude: -180},
		)
		if err != nil {
			s.initErr = fmt.Errorf("load region list: %w", err)
			return
		}

		s.mu.Lock()
		s.regionAll = all
		s.ready = true
		s.mu.Unlock()
		log.Printf("tide service initialized: %d regions (%d inserted, %d updated)",
			len(all), report.Inserted, report.Updated)
	})
	return s.initErr
}

func (s *Service) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Regions returns the in-memory region list loaded at initialization.
func (s *Service) Regions() []regions.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]regions.Region, len(s.regionAll))
	copy(out, s.regionAll)
	return out
}

// CalculateTideInfo computes the full tide record for a coordinate and
// instant. Results for the same rounded coordinate and calendar date are
// served from the cache.
func (s *Service) CalculateTideInfo(coords domain.Coordinates, date time.Time) (*domain.TideInfo, error) {
	if !s.isReady() {
		return nil, ErrNotInitialized
	}
	if err := coords.Validate(); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: zero time", astro.ErrInvalidDate)
	}

	cacheKey, err := cache.NormalizeKey(cache.Key{Coordinates: coords, Date: date})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if data, ok := s.cache.Get(cacheKey); ok {
			var info domain.TideInfo
			if err := json.Unmarshal(data, &info); err == nil {
				metrics.CountCacheHit()
				return &info, nil
			}
			log.Printf("discarding undecodable cache entry %s: %v", cacheKey, err)
		}
		metrics.CountCacheMiss()
	}

	started := time.Now()
	info, err := s.calculate(coords, date)
	if err != nil {
		return nil, fmt.Errorf("calculate tide info for (%.4f, %.4f): %w", coords.Latitude, coords.Longitude, err)
	}
	metrics.ObserveCalculation(time.Since(started).Seconds())

	if s.cache != nil {
		if data, err := json.Marshal(info); err == nil {
			s.cache.Set(cacheKey, data)
		}
	}
	return info, nil
}

func (s *Service) calculate(coords domain.Coordinates, date time.Time) (*domain.TideInfo, error) {
	match := s.regions.GetBestRegionForCoordinates(coords)
	if match == nil {
		return nil, fmt.Errorf("no regional data covers (%.4f, %.4f)", coords.Latitude, coords.Longitude)
	}

	base := s.baseHarmonics(match.Region, coords, date)
	if len(base) == 0 {
		return nil, fmt.Errorf("region %s has no usable harmonics", match.Region.ID)
	}

	corrected, err := s.correction.ApplyCorrectionFactors(coords, base, correction.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("apply corrections: %w", err)
	}

	level := domain.CalculateTideLevel(date, corrected.Constants)
	strength := domain.CalculateTideStrength(corrected.Constants)

	moon, err := astro.CalculateMoonPhase(date)
	if err != nil {
		return nil, fmt.Errorf("moon phase: %w", err)
	}
	tideType := domain.ClassifyTideType(moon.AgeDays)

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	events, err := domain.FindTidalExtremes(dayStart, dayEnd, corrected.Constants)
	if err != nil {
		return nil, fmt.Errorf("find extremes: %w", err)
	}

	next := nextEvent(events, date)
	state := currentState(next, date)

	return &domain.TideInfo{
		Location:       coords,
		Date:           date,
		CurrentState:   state,
		CurrentLevelCm: level,
		TideType:       tideType,
		TideStrength:   strength,
		Events:         events,
		NextEvent:      next,
		CalculatedAt:   time.Now().UTC(),
		Accuracy:       deriveAccuracy(corrected.Region),
	}, nil
}

// Base-harmonic synthesis. Stored regional values are modulated by a small
// linear spatial offset from a fixed reference point and by a seasonal
// sinusoid whose weight grows with |latitude|.
var baseReference = domain.Coordinates{Latitude: 35.0, Longitude: 139.0}

var seasonalPhaseShift = map[string]float64{
	"M2": 0,
	"S2": math.Pi / 4,
	"K1": math.Pi / 2,
	"O1": 3 * math.Pi / 4,
}

var baseConstituents = []string{"M2", "S2", "K1", "O1"}

func (s *Service) baseHarmonics(region regions.Region, coords domain.Coordinates, date time.Time) []domain.HarmonicConstant {
	stored := make(map[string]regions.Harmonic, len(baseConstituents))
	for _, name := range baseConstituents {
		if h, ok := region.Harmonics[name]; ok {
			stored[name] = h
		}
	}

	// A local grid, when configured and readable, replaces the stored
	// amplitudes and phases but keeps the same modulation.
	if s.grid != nil && s.grid.Available() {
		if gridded, err := s.grid.LoadForLocation(coords); err == nil {
			for _, c := range gridded {
				stored[c.Name] = regions.Harmonic{AmplitudeCm: c.AmplitudeCm, PhaseDeg: c.PhaseDeg}
			}
		} else {
			log.Printf("grid lookup failed, using regional values: %v", err)
		}
	}

	latOff := (coords.Latitude - baseReference.Latitude) / 90
	lonOff := (coords.Longitude - baseReference.Longitude) / 180
	spatial := 1 + 0.05*latOff + 0.03*lonOff

	yearDay := float64(date.YearDay())
	latWeight := math.Abs(coords.Latitude) / 90

	out := make([]domain.HarmonicConstant, 0, len(baseConstituents))
	for _, name := range baseConstituents {
		h, ok := stored[name]
		if !ok {
			continue
		}
		seasonal := 1 + 0.02*latWeight*math.Sin(2*math.Pi*yearDay/365.25+seasonalPhaseShift[name])
		amp := math.Max(0, h.AmplitudeCm*spatial*seasonal)
		c, err := domain.NewHarmonicConstant(name, amp, h.PhaseDeg)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// nextEvent picks the first event strictly after the instant.
func nextEvent(events []domain.TideEvent, at time.Time) *domain.TideEvent {
	for i := range events {
		if events[i].Time.After(at) {
			e := events[i]
			return &e
		}
	}
	return nil
}

const slackWindow = 10 * time.Minute

// currentState reports the event type itself near a turning point and the
// trend toward it otherwise.
func currentState(next *domain.TideEvent, at time.Time) domain.TideState {
	if next == nil {
		return domain.StateRising
	}
	if next.Time.Sub(at) <= slackWindow {
		if next.Type == domain.EventHigh {
			return domain.StateHigh
		}
		return domain.StateLow
	}
	if next.Type == domain.EventHigh {
		return domain.StateRising
	}
	return domain.StateFalling
}

// deriveAccuracy grades the result by the correction actually applied: a
// high-quality region inside its coverage radius earns "high", any other
// applied region "medium", and uncorrected output "low".
func deriveAccuracy(match *regions.Match) domain.Accuracy {
	if match == nil {
		return domain.AccuracyLow
	}
	if match.Region.Quality == regions.QualityHigh && match.DistanceKm <= match.Region.CoverageRadiusKm {
		return domain.AccuracyHigh
	}
	return domain.AccuracyMedium
}

// Health reports component presence. It performs no functional checks.
type Health struct {
	Ready       bool `json:"ready"`
	Regions     bool `json:"regions"`
	Corrections bool `json:"corrections"`
	Cache       bool `json:"cache"`
	Grid        bool `json:"grid"`
}

// HealthCheck reports which sub-components are wired and whether
// initialization has completed.
func (s *Service) HealthCheck() Health {
	return Health{
		Ready:       s.isReady(),
		Regions:     s.regions != nil,
		Corrections: s.correction != nil,
		Cache:       s.cache != nil,
		Grid:        s.grid != nil && s.grid.Available(),
	}
}

// CacheStats exposes hit/miss statistics for the memoization layer.
func (s *Service) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.GetStats()
}
