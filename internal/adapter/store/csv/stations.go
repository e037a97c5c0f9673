// Package csv loads per-station harmonic constants from a local CSV file.
// It serves as an alternative base-harmonics source for stations the user
// has calibrated themselves: rows carry a station position and one
// constituent each, and lookups resolve to the nearest station in range.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.ngs.io/tide-engine/internal/domain"
)

// DefaultMaxDistanceKm bounds how far a query may sit from a station.
const DefaultMaxDistanceKm = 50.0

var expectedHeader = []string{"station_id", "latitude", "longitude", "constituent", "amplitude_cm", "phase_deg"}

// Station is one calibrated station with its constants.
type Station struct {
	ID          string
	Coordinates domain.Coordinates
	Constants   []domain.HarmonicConstant
}

// StationStore answers location queries against a CSV constants file. The
// file is parsed once on first use.
type StationStore struct {
	path          string
	maxDistanceKm float64

	once     sync.Once
	stations []Station
	loadErr  error
}

// NewStationStore points a store at a constants file.
func NewStationStore(path string) *StationStore {
	return &StationStore{path: path, maxDistanceKm: DefaultMaxDistanceKm}
}

// Available reports whether the constants file exists.
func (s *StationStore) Available() bool {
	if s == nil || s.path == "" {
		return false
	}
	_, err := os.Stat(s.path)
	return err == nil
}

// LoadForLocation returns the constants of the nearest station within range.
func (s *StationStore) LoadForLocation(coords domain.Coordinates) ([]domain.HarmonicConstant, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}
	s.once.Do(s.load)
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	var best *Station
	bestKm := s.maxDistanceKm
	for i := range s.stations {
		km := domain.HaversineKm(coords, s.stations[i].Coordinates)
		if km <= bestKm {
			best = &s.stations[i]
			bestKm = km
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no station within %.0f km of (%.4f, %.4f)", s.maxDistanceKm, coords.Latitude, coords.Longitude)
	}
	return append([]domain.HarmonicConstant(nil), best.Constants...), nil
}

// Stations returns all loaded stations.
func (s *StationStore) Stations() ([]Station, error) {
	s.once.Do(s.load)
	return s.stations, s.loadErr
}

func (s *StationStore) load() {
	f, err := os.Open(s.path)
	if err != nil {
		s.loadErr = fmt.Errorf("open station constants: %w", err)
		return
	}
	defer func() { _ = f.Close() }()

	stations, err := parseStations(f)
	if err != nil {
		s.loadErr = fmt.Errorf("parse %s: %w", s.path, err)
		return
	}
	s.stations = stations
}

func parseStations(r io.Reader) ([]Station, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeader) {
		return nil, fmt.Errorf("header has %d columns, want %d", len(header), len(expectedHeader))
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expectedHeader[i] {
			return nil, fmt.Errorf("column %d is %q, want %q", i, h, expectedHeader[i])
		}
	}

	byID := make(map[string]*Station)
	order := make([]string, 0)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id := strings.TrimSpace(record[0])
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		amp, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: amplitude: %w", line, err)
		}
		phase, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: phase: %w", line, err)
		}

		constant, err := domain.NewHarmonicConstant(strings.TrimSpace(record[3]), amp, phase)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		station, ok := byID[id]
		if !ok {
			coords := domain.Coordinates{Latitude: lat, Longitude: lon}
			if err := coords.Validate(); err != nil {
				return nil, fmt.Errorf("line %d: station %s: %w", line, id, err)
			}
			station = &Station{ID: id, Coordinates: coords}
			byID[id] = station
			order = append(order, id)
		}
		station.Constants = append(station.Constants, constant)
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("no station rows found")
	}

	out := make([]Station, len(order))
	for i, id := range order {
		out[i] = *byID[id]
	}
	return out, nil
}
