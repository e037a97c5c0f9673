// Package correction transforms generic harmonic constants into locally
// corrected ones using the regional calibration dataset: base amplitude and
// phase adjustment plus shallow-water, basin-resonance and strait
// propagation models.
package correction

import (
	"fmt"
	"log"
	"math"

	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/regions"
)

// DefaultMaxDistanceKm bounds the nearest-region search.
const DefaultMaxDistanceKm = 100.0

// Physical constants of the correction models.
const (
	gravity = 9.81 // m/s^2

	shallowDepthM    = 50.0 // Below this depth M4 is synthesized from M2.
	veryShallowM     = 30.0 // Below this depth MS4 is synthesized too.
	m4AmplitudeRatio = 0.10
	ms4AmplitudeRate = 0.05

	resonanceBaseline = 1.2 // Amplification applied to every tidal-band constituent in a bay.

	straitAttenuationKm = 150.0 // e-folding distance of strait amplitude decay.

	clampMin = 0.5 // Final corrected/original amplitude ratio bounds.
	clampMax = 2.0
)

// Options tunes one correction pass. The zero value disables every optional
// effect; DefaultOptions enables them all.
type Options struct {
	MaxDistanceKm   float64
	HighQualityOnly bool
	ShallowWater    bool
	Resonance       bool
	Strait          bool
}

// DefaultOptions enables the full correction pipeline within the standard
// search radius.
func DefaultOptions() Options {
	return Options{
		MaxDistanceKm: DefaultMaxDistanceKm,
		ShallowWater:  true,
		Resonance:     true,
		Strait:        true,
	}
}

// Engine applies regional corrections. It only reads from the region
// service, so a single instance is safe for concurrent use.
type Engine struct {
	regions *regions.Service
}

// NewEngine wraps a region service.
func NewEngine(svc *regions.Service) *Engine {
	return &Engine{regions: svc}
}

// Result carries the corrected constants plus the region that produced them,
// so callers can grade confidence. Region is nil when no correction applied.
type Result struct {
	Constants []domain.HarmonicConstant
	Region    *regions.Match
}

// ApplyCorrectionFactors corrects constants for a coordinate. Input
// validation failures propagate; any internal failure degrades to returning
// the input unmodified, as does the absence of a qualifying region.
func (e *Engine) ApplyCorrectionFactors(coords domain.Coordinates, constants []domain.HarmonicConstant, opts Options) (Result, error) {
	if err := coords.Validate(); err != nil {
		return Result{}, err
	}
	if len(constants) == 0 {
		return Result{}, fmt.Errorf("apply corrections: %w", domain.ErrNoConstituents)
	}

	maxDistance := opts.MaxDistanceKm
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistanceKm
	}
	quality := regions.Quality("")
	if opts.HighQualityOnly {
		quality = regions.QualityHigh
	}

	matches := e.regions.FindNearestStations(coords, regions.NearestOptions{
		Limit:         1,
		MaxDistanceKm: maxDistance,
		Quality:       quality,
		ActiveOnly:    true,
	})
	if len(matches) == 0 {
		// Fail open: no calibration in range means no correction.
		return Result{Constants: cloneConstants(constants)}, nil
	}
	match := matches[0]

	corrected, err := correct(match.Region, constants, opts)
	if err != nil {
		log.Printf("correction: degraded to uncorrected constants near %s: %v", match.Region.ID, err)
		return Result{Constants: cloneConstants(constants)}, nil
	}
	return Result{Constants: corrected, Region: &match}, nil
}

// correct runs steps 3-7 of the pipeline against one region. Any panic from
// the numeric models is recovered into an error so the caller can degrade.
func correct(region regions.Region, input []domain.HarmonicConstant, opts Options) (out []domain.HarmonicConstant, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("correction model panic: %v", r)
		}
	}()

	out = applyBase(region, input)

	if opts.ShallowWater {
		out = applyShallowWater(region, out)
	}
	if opts.Resonance {
		if bay, ok := region.Kind.(regions.Bay); ok {
			applyResonance(region.DepthM, bay.LengthKm, out)
		}
	}
	if opts.Strait {
		if strait, ok := region.Kind.(regions.Strait); ok {
			applyStrait(region.DepthM, strait.DistanceFromOceanKm, out)
		}
	}

	clampToOriginal(input, out)
	return out, nil
}

// applyBase scales amplitudes against the canonical reference and shifts
// phases by the region's stored offsets. M2 and S2 get their own scale
// factors; every other constituent reuses M2's. Constituents without a
// stored phase offset fall back to M2's.
func applyBase(region regions.Region, input []domain.HarmonicConstant) []domain.HarmonicConstant {
	m2 := region.Harmonics["M2"]
	s2 := region.Harmonics["S2"]

	m2Scale := m2.AmplitudeCm / domain.ReferenceM2Cm
	s2Scale := s2.AmplitudeCm / domain.ReferenceS2Cm

	out := make([]domain.HarmonicConstant, len(input))
	for i, c := range input {
		scale := m2Scale
		if c.Name == "S2" {
			scale = s2Scale
		}

		offset := m2.PhaseDeg
		if h, ok := region.Harmonics[c.Name]; ok {
			offset = h.PhaseDeg
		}

		out[i] = c
		out[i].AmplitudeCm = c.AmplitudeCm * scale
		out[i].PhaseDeg = domain.NormalizePhase(c.PhaseDeg + offset)
	}
	return out
}

// applyShallowWater synthesizes the nonlinear overtones generated when the
// tide shoals: M4 from M2 under 50 m of water, MS4 from the M2/S2
// interaction under 30 m. Synthesized constituents merge additively when
// already present.
func applyShallowWater(region regions.Region, constants []domain.HarmonicConstant) []domain.HarmonicConstant {
	if region.DepthM >= shallowDepthM {
		return constants
	}

	m2 := findConstant(constants, "M2")
	s2 := findConstant(constants, "S2")
	if m2 == nil {
		return constants
	}

	depthDeficit := (shallowDepthM - region.DepthM) / shallowDepthM

	m4, _ := domain.NewHarmonicConstant("M4",
		m2.AmplitudeCm*m4AmplitudeRatio*depthDeficit,
		2*m2.PhaseDeg)
	constants = mergeConstant(constants, m4)

	if region.DepthM < veryShallowM && s2 != nil {
		ms4, _ := domain.NewHarmonicConstant("MS4",
			ms4AmplitudeRate*math.Sqrt(m2.AmplitudeCm*s2.AmplitudeCm),
			m2.PhaseDeg+s2.PhaseDeg)
		constants = mergeConstant(constants, ms4)
	}
	return constants
}

// applyResonance amplifies tidal-band constituents in a bay. The basin's
// natural period comes from the quarter-wave approximation
// T = 4L / sqrt(gh); constituents whose period sits near the exact, half or
// double resonance ratio get Gaussian-shaped boosts on top of the baseline.
func applyResonance(depthM, bayLengthKm float64, constants []domain.HarmonicConstant) {
	if depthM <= 0 || bayLengthKm <= 0 {
		return
	}

	waveSpeed := math.Sqrt(gravity * depthM)               // m/s
	basinPeriodHr := 4 * bayLengthKm * 1000 / waveSpeed / 3600

	for i := range constants {
		c := &constants[i]
		if !c.IsSemidiurnal() && !c.IsDiurnal() {
			continue
		}

		ratio := basinPeriodHr / c.PeriodHours()
		factor := resonanceBaseline +
			0.50*gaussian(ratio, 1.0, 0.15) +
			0.25*gaussian(ratio, 0.5, 0.08) +
			0.25*gaussian(ratio, 2.0, 0.30)

		c.AmplitudeCm *= factor
	}
}

// applyStrait models propagation through a channel: a phase delay from the
// travel time at shallow-water wave speed and an exponential amplitude decay
// with distance from open ocean.
func applyStrait(depthM, distanceKm float64, constants []domain.HarmonicConstant) {
	if depthM <= 0 || distanceKm <= 0 {
		return
	}

	waveSpeedKmHr := math.Sqrt(gravity*depthM) * 3.6
	travelHours := distanceKm / waveSpeedKmHr
	attenuation := math.Exp(-distanceKm / straitAttenuationKm)

	for i := range constants {
		c := &constants[i]
		delayDeg := c.SpeedDegPerHr * travelHours
		c.PhaseDeg = domain.NormalizePhase(c.PhaseDeg - delayDeg)
		c.AmplitudeCm *= attenuation
	}
}

// clampToOriginal bounds each original constituent's corrected amplitude to
// [0.5, 2.0] times its input value. Constituents synthesized by the
// shallow-water step have no original and are exempt.
func clampToOriginal(input, out []domain.HarmonicConstant) {
	originals := make(map[string]float64, len(input))
	for _, c := range input {
		originals[c.Name] = c.AmplitudeCm
	}

	for i := range out {
		orig, ok := originals[out[i].Name]
		if !ok || orig == 0 {
			continue
		}
		ratio := out[i].AmplitudeCm / orig
		switch {
		case ratio < clampMin:
			out[i].AmplitudeCm = orig * clampMin
		case ratio > clampMax:
			out[i].AmplitudeCm = orig * clampMax
		}
	}
}

func gaussian(x, center, sigma float64) float64 {
	d := x - center
	return math.Exp(-d * d / (2 * sigma * sigma))
}

func findConstant(constants []domain.HarmonicConstant, name string) *domain.HarmonicConstant {
	for i := range constants {
		if constants[i].Name == name {
			return &constants[i]
		}
	}
	return nil
}

// mergeConstant adds amplitude into an existing constituent of the same name
// or appends a new one.
func mergeConstant(constants []domain.HarmonicConstant, add domain.HarmonicConstant) []domain.HarmonicConstant {
	if existing := findConstant(constants, add.Name); existing != nil {
		existing.AmplitudeCm += add.AmplitudeCm
		return constants
	}
	return append(constants, add)
}

func cloneConstants(in []domain.HarmonicConstant) []domain.HarmonicConstant {
	out := make([]domain.HarmonicConstant, len(in))
	copy(out, in)
	return out
}
