// Package fesgrid reads harmonic constants from local FES-style NetCDF
// grids. It is an optional, higher-fidelity source of base amplitudes and
// phases: when a grid directory is configured the engine interpolates the
// gridded values at the request coordinate instead of using the region's
// stored ones. Only local files are ever read.
package fesgrid

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/tide-engine/internal/domain"
)

// Constituents the engine asks the grids for.
var gridConstituents = []string{"M2", "S2", "K1", "O1"}

// Store lazily loads and caches constituent grids from a directory of
// {constituent}_amplitude.nc / {constituent}_phase.nc files. Amplitude grids
// are expected in centimeters.
type Store struct {
	dir string

	mu    sync.RWMutex
	grids map[string]*constituentGrid
}

type constituentGrid struct {
	amplitude grid2D
	phase     grid2D
}

// New points a store at a grid directory. The directory is not touched
// until the first lookup.
func New(dir string) *Store {
	return &Store{dir: dir, grids: make(map[string]*constituentGrid)}
}

// Available reports whether the directory exists and holds at least one
// amplitude grid.
func (s *Store) Available() bool {
	if s == nil || s.dir == "" {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, "*_amplitude.nc"))
	return err == nil && len(matches) > 0
}

// LoadForLocation interpolates amplitude and phase for every available
// constituent at a coordinate. Constituents whose grids are missing or
// unreadable are skipped; an empty result is an error so callers fall back
// to the regional dataset.
func (s *Store) LoadForLocation(coords domain.Coordinates) ([]domain.HarmonicConstant, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	// FES grids use a 0-360 longitude axis.
	lon := math.Mod(coords.Longitude, 360)
	if lon < 0 {
		lon += 360
	}

	constants := make([]domain.HarmonicConstant, 0, len(gridConstituents))
	for _, name := range gridConstituents {
		g, err := s.constituent(name)
		if err != nil {
			continue
		}
		amp, err := g.amplitude.interpolate(lon, coords.Latitude)
		if err != nil {
			continue
		}
		phase, err := g.phase.interpolate(lon, coords.Latitude)
		if err != nil {
			continue
		}
		c, err := domain.NewHarmonicConstant(name, math.Max(0, amp), phase)
		if err != nil {
			continue
		}
		constants = append(constants, c)
	}

	if len(constants) == 0 {
		return nil, fmt.Errorf("no usable grids in %s for (%.4f, %.4f)", s.dir, coords.Latitude, coords.Longitude)
	}
	return constants, nil
}

// constituent returns a cached grid pair, loading it on first use.
func (s *Store) constituent(name string) (*constituentGrid, error) {
	s.mu.RLock()
	g, ok := s.grids[name]
	s.mu.RUnlock()
	if ok {
		return g, nil
	}

	lower := strings.ToLower(name)
	amp, err := loadGrid(filepath.Join(s.dir, lower+"_amplitude.nc"), "amplitude")
	if err != nil {
		return nil, fmt.Errorf("load %s amplitude: %w", name, err)
	}
	phase, err := loadGrid(filepath.Join(s.dir, lower+"_phase.nc"), "phase")
	if err != nil {
		return nil, fmt.Errorf("load %s phase: %w", name, err)
	}

	g = &constituentGrid{amplitude: amp, phase: phase}
	s.mu.Lock()
	s.grids[name] = g
	s.mu.Unlock()
	return g, nil
}

// grid2D is a regular lat/lon grid with values[latIdx][lonIdx].
type grid2D struct {
	lons   []float64
	lats   []float64
	values [][]float64
}

// interpolate bilinearly samples the grid at (lon, lat).
func (g grid2D) interpolate(lon, lat float64) (float64, error) {
	i, err := bracket(g.lats, lat)
	if err != nil {
		return 0, fmt.Errorf("latitude %.4f: %w", lat, err)
	}
	j, err := bracket(g.lons, lon)
	if err != nil {
		return 0, fmt.Errorf("longitude %.4f: %w", lon, err)
	}

	u := (lat - g.lats[i]) / (g.lats[i+1] - g.lats[i])
	t := (lon - g.lons[j]) / (g.lons[j+1] - g.lons[j])

	return (1-t)*(1-u)*g.values[i][j] +
		t*(1-u)*g.values[i][j+1] +
		(1-t)*u*g.values[i+1][j] +
		t*u*g.values[i+1][j+1], nil
}

// bracket finds i such that axis[i] <= v <= axis[i+1] on a strictly
// increasing axis.
func bracket(axis []float64, v float64) (int, error) {
	if len(axis) < 2 || v < axis[0] || v > axis[len(axis)-1] {
		return 0, fmt.Errorf("outside grid axis [%.4f, %.4f]", axis[0], axis[len(axis)-1])
	}
	lo, hi := 0, len(axis)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if axis[mid] <= v {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// loadGrid reads one lat/lon/value triple from a NetCDF file.
func loadGrid(path, varName string) (grid2D, error) {
	if _, err := os.Stat(path); err != nil {
		return grid2D{}, err
	}

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return grid2D{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	lats, err := readAxis(nc, "lat")
	if err != nil {
		return grid2D{}, err
	}
	lons, err := readAxis(nc, "lon")
	if err != nil {
		return grid2D{}, err
	}

	v, err := nc.Var(varName)
	if err != nil {
		return grid2D{}, fmt.Errorf("variable %s: %w", varName, err)
	}
	flat, err := readFloats(v, len(lats)*len(lons))
	if err != nil {
		return grid2D{}, fmt.Errorf("variable %s: %w", varName, err)
	}

	values := make([][]float64, len(lats))
	for i := range values {
		values[i] = flat[i*len(lons) : (i+1)*len(lons)]
	}
	return grid2D{lons: lons, lats: lats, values: values}, nil
}

// readAxis reads a 1D coordinate variable, accepting "lat"/"latitude" style
// aliases.
func readAxis(nc netcdf.Dataset, name string) ([]float64, error) {
	aliases := []string{name, name + "itude"}
	for _, alias := range aliases {
		v, err := nc.Var(alias)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil || len(dims) != 1 {
			continue
		}
		n, err := dims[0].Len()
		if err != nil {
			continue
		}
		return readFloats(v, int(n))
	}
	return nil, fmt.Errorf("axis variable %s not found", name)
}

// readFloats reads n values from a DOUBLE or FLOAT variable.
func readFloats(v netcdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case netcdf.DOUBLE:
		out := make([]float64, n)
		if err := v.ReadFloat64s(out); err != nil {
			return nil, err
		}
		return out, nil
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported variable type %v", t)
	}
}
