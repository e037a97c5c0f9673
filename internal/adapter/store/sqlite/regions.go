package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/regions"
)

// regionTypeOf flattens the tagged kind into the column triple
// (type, bay_length_km, ocean_dist_km).
func regionTypeOf(kind regions.RegionKind) (string, sql.NullFloat64, sql.NullFloat64) {
	switch k := kind.(type) {
	case regions.Bay:
		return "bay", sql.NullFloat64{Float64: k.LengthKm, Valid: true}, sql.NullFloat64{}
	case regions.Strait:
		return "strait", sql.NullFloat64{}, sql.NullFloat64{Float64: k.DistanceFromOceanKm, Valid: true}
	default:
		return "open", sql.NullFloat64{}, sql.NullFloat64{}
	}
}

// kindOf rebuilds the tagged kind from the stored columns. Unknown types
// degrade to open coastline.
func kindOf(regionType string, bayLength, oceanDist sql.NullFloat64) regions.RegionKind {
	switch regionType {
	case "bay":
		return regions.Bay{LengthKm: bayLength.Float64}
	case "strait":
		return regions.Strait{DistanceFromOceanKm: oceanDist.Float64}
	default:
		return regions.OpenSea{}
	}
}

// UpsertRegion inserts or updates a calibration record by ID. Reports
// whether a new row was created so the seeder can count inserts vs updates.
func (s *Store) UpsertRegion(r regions.Region) (bool, error) {
	m2, okM2 := r.Harmonics["M2"]
	s2, okS2 := r.Harmonics["S2"]
	if !okM2 || !okS2 {
		return false, fmt.Errorf("region %s: M2 and S2 harmonics are required", r.ID)
	}

	regionType, bayLength, oceanDist := regionTypeOf(r.Kind)
	k1 := nullHarmonic(r.Harmonics, "K1")
	o1 := nullHarmonic(r.Harmonics, "O1")
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var inserted bool
	err := retryOnContention(func() error {
		_, err := s.db.Exec(`
			INSERT INTO regions (
				region_id, name, latitude, longitude,
				m2_amp_cm, m2_phase_deg, s2_amp_cm, s2_phase_deg,
				k1_amp_cm, k1_phase_deg, o1_amp_cm, o1_phase_deg,
				depth_m, region_type, bay_length_km, ocean_dist_km,
				data_quality, is_active, coverage_km, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(region_id) DO UPDATE SET
				name = excluded.name,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				m2_amp_cm = excluded.m2_amp_cm,
				m2_phase_deg = excluded.m2_phase_deg,
				s2_amp_cm = excluded.s2_amp_cm,
				s2_phase_deg = excluded.s2_phase_deg,
				k1_amp_cm = excluded.k1_amp_cm,
				k1_phase_deg = excluded.k1_phase_deg,
				o1_amp_cm = excluded.o1_amp_cm,
				o1_phase_deg = excluded.o1_phase_deg,
				depth_m = excluded.depth_m,
				region_type = excluded.region_type,
				bay_length_km = excluded.bay_length_km,
				ocean_dist_km = excluded.ocean_dist_km,
				data_quality = excluded.data_quality,
				is_active = excluded.is_active,
				coverage_km = excluded.coverage_km,
				updated_at = excluded.updated_at`,
			r.ID, r.Name, r.Coordinates.Latitude, r.Coordinates.Longitude,
			m2.AmplitudeCm, m2.PhaseDeg, s2.AmplitudeCm, s2.PhaseDeg,
			k1.amp, k1.phase, o1.amp, o1.phase,
			r.DepthM, regionType, bayLength, oceanDist,
			string(r.Quality), boolToInt(r.Active), r.CoverageRadiusKm, now, now,
		)
		if err != nil {
			return err
		}
		// SQLite reports 1 changed row for both paths; distinguish by
		// checking whether created_at survived the upsert.
		var createdAt string
		if err := s.db.QueryRow(
			`SELECT created_at FROM regions WHERE region_id = ?`, r.ID,
		).Scan(&createdAt); err != nil {
			return err
		}
		inserted = createdAt == now
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert region %s: %w", r.ID, err)
	}
	return inserted, nil
}

type nullableHarmonic struct {
	amp   sql.NullFloat64
	phase sql.NullFloat64
}

func nullHarmonic(h map[string]regions.Harmonic, name string) nullableHarmonic {
	v, ok := h[name]
	if !ok {
		return nullableHarmonic{}
	}
	return nullableHarmonic{
		amp:   sql.NullFloat64{Float64: v.AmplitudeCm, Valid: true},
		phase: sql.NullFloat64{Float64: v.PhaseDeg, Valid: true},
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const regionColumns = `region_id, name, latitude, longitude,
	m2_amp_cm, m2_phase_deg, s2_amp_cm, s2_phase_deg,
	k1_amp_cm, k1_phase_deg, o1_amp_cm, o1_phase_deg,
	depth_m, region_type, bay_length_km, ocean_dist_km,
	data_quality, is_active, coverage_km, created_at, updated_at`

// GetRegion returns a record by ID, or nil when absent.
func (s *Store) GetRegion(id string) (*regions.Region, error) {
	row := s.db.QueryRow(`SELECT `+regionColumns+` FROM regions WHERE region_id = ?`, id)
	r, err := scanRegion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get region %s: %w", id, err)
	}
	return r, nil
}

// ListRegions returns all records, optionally active-only.
func (s *Store) ListRegions(activeOnly bool) ([]regions.Region, error) {
	query := `SELECT ` + regionColumns + ` FROM regions`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY region_id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()
	return collectRegions(rows)
}

// RegionsInBounds returns records inside the lat/lon rectangle.
func (s *Store) RegionsInBounds(ne, sw domain.Coordinates, activeOnly bool) ([]regions.Region, error) {
	query := `SELECT ` + regionColumns + ` FROM regions
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY region_id`

	rows, err := s.db.Query(query, sw.Latitude, ne.Latitude, sw.Longitude, ne.Longitude)
	if err != nil {
		return nil, fmt.Errorf("regions in bounds: %w", err)
	}
	defer rows.Close()
	return collectRegions(rows)
}

// CountRegions returns the total number of records.
func (s *Store) CountRegions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM regions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count regions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegion(row rowScanner) (*regions.Region, error) {
	var (
		r                    regions.Region
		m2a, m2p, s2a, s2p   float64
		k1a, k1p, o1a, o1p   sql.NullFloat64
		regionType           string
		bayLength, oceanDist sql.NullFloat64
		quality              string
		active               int
		createdAt, updatedAt string
	)
	err := row.Scan(
		&r.ID, &r.Name, &r.Coordinates.Latitude, &r.Coordinates.Longitude,
		&m2a, &m2p, &s2a, &s2p,
		&k1a, &k1p, &o1a, &o1p,
		&r.DepthM, &regionType, &bayLength, &oceanDist,
		&quality, &active, &r.CoverageRadiusKm, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Harmonics = map[string]regions.Harmonic{
		"M2": {AmplitudeCm: m2a, PhaseDeg: m2p},
		"S2": {AmplitudeCm: s2a, PhaseDeg: s2p},
	}
	if k1a.Valid {
		r.Harmonics["K1"] = regions.Harmonic{AmplitudeCm: k1a.Float64, PhaseDeg: k1p.Float64}
	}
	if o1a.Valid {
		r.Harmonics["O1"] = regions.Harmonic{AmplitudeCm: o1a.Float64, PhaseDeg: o1p.Float64}
	}

	r.Kind = kindOf(regionType, bayLength, oceanDist)
	r.Quality = regions.Quality(quality)
	r.Active = active != 0
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &r, nil
}

func collectRegions(rows *sql.Rows) ([]regions.Region, error) {
	out := make([]regions.Region, 0)
	for rows.Next() {
		r, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regions: %w", err)
	}
	return out, nil
}
