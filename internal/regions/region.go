// Package regions owns the regional calibration dataset and answers
// nearest-neighbor and bounding-box queries against it.
package regions

import (
	"time"

	"go.ngs.io/tide-engine/internal/domain"
)

// Quality grades the provenance of a region's calibration values.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// RegionKind is the tagged physical classification of a region, decided once
// at data-load time. The variant carries the geometry the correction models
// need, so no consumer ever reaches into untyped metadata.
type RegionKind interface {
	isRegionKind()
}

// OpenSea marks a region on open coastline.
type OpenSea struct{}

// Bay marks a semi-enclosed basin with a characteristic length.
type Bay struct {
	LengthKm float64
}

// Strait marks a channel at some propagation distance from open ocean.
type Strait struct {
	DistanceFromOceanKm float64
}

func (OpenSea) isRegionKind() {}
func (Bay) isRegionKind()     {}
func (Strait) isRegionKind()  {}

// Harmonic is a region's calibrated base amplitude and phase for one
// constituent.
type Harmonic struct {
	AmplitudeCm float64
	PhaseDeg    float64
}

// Region is one record of the calibration dataset. M2 and S2 harmonics are
// always present; K1/O1 and others are optional. Records are deactivated
// rather than deleted.
type Region struct {
	ID               string
	Name             string
	Coordinates      domain.Coordinates
	Harmonics        map[string]Harmonic
	DepthM           float64
	Kind             RegionKind
	Quality          Quality
	Active           bool
	CoverageRadiusKm float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Match pairs a region with its distance from a query point.
type Match struct {
	Region     Region
	DistanceKm float64
}

// Store is the durable backing for the dataset. Implementations must make
// UpsertRegion idempotent by region ID.
type Store interface {
	// UpsertRegion inserts or updates by ID and reports whether a new row
	// was created.
	UpsertRegion(r Region) (inserted bool, err error)
	GetRegion(id string) (*Region, error)
	// ListRegions returns all records, optionally restricted to active ones.
	ListRegions(activeOnly bool) ([]Region, error)
	// RegionsInBounds returns records inside the lat/lon rectangle.
	RegionsInBounds(ne, sw domain.Coordinates, activeOnly bool) ([]Region, error)
	CountRegions() (int, error)
}
