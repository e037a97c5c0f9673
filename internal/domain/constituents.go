// Package domain holds the tidal value types and the harmonic synthesis
// engine shared by every other component.
package domain

import (
	"errors"
	"fmt"
	"math"
)

// HarmonicConstant is one tidal constituent with a locally calibrated
// amplitude and phase. Instances are ephemeral: they are built per request
// and never persisted.
type HarmonicConstant struct {
	Name          string
	AmplitudeCm   float64 // Amplitude in centimeters, always >= 0.
	PhaseDeg      float64 // Phase in degrees, renormalized to [-180, 180].
	SpeedDegPerHr float64 // Angular speed in degrees per hour.
}

// ErrUnknownConstituent is returned when a constituent name has no entry in
// the angular speed table.
var ErrUnknownConstituent = errors.New("unknown constituent")

// StandardSpeeds maps constituent names to angular speeds (deg/hour).
// Reference: https://www.pmel.noaa.gov/pubs/PDF/park2589/park2589.pdf
var StandardSpeeds = map[string]float64{
	// Principal lunar semidiurnal.
	"M2": 28.9841042,
	// Principal solar semidiurnal.
	"S2": 30.0000000,
	// Larger lunar elliptic semidiurnal.
	"N2": 28.4397295,
	// Lunisolar semidiurnal.
	"K2": 30.0821373,

	// Lunar diurnal.
	"K1": 15.0410686,
	// Principal lunar diurnal.
	"O1": 13.9430356,
	// Solar diurnal.
	"P1": 14.9589314,
	// Larger lunar elliptic diurnal.
	"Q1": 13.3986609,

	// Shallow water overtides.
	"M4":  57.9682084,
	"MS4": 58.9841042,
	"M6":  86.9523127,
}

// ConstituentSpeed returns the angular speed for a constituent name.
func ConstituentSpeed(name string) (float64, bool) {
	speed, ok := StandardSpeeds[name]
	return speed, ok
}

// NewHarmonicConstant builds a constituent from calibrated values, resolving
// the angular speed from the standard table and renormalizing the phase.
func NewHarmonicConstant(name string, amplitudeCm, phaseDeg float64) (HarmonicConstant, error) {
	speed, ok := ConstituentSpeed(name)
	if !ok {
		return HarmonicConstant{}, fmt.Errorf("%w: %s", ErrUnknownConstituent, name)
	}
	if amplitudeCm < 0 {
		return HarmonicConstant{}, fmt.Errorf("constituent %s: amplitude must be >= 0, got %.2f", name, amplitudeCm)
	}
	return HarmonicConstant{
		Name:          name,
		AmplitudeCm:   amplitudeCm,
		PhaseDeg:      NormalizePhase(phaseDeg),
		SpeedDegPerHr: speed,
	}, nil
}

// NormalizePhase folds an angle in degrees into [-180, 180]. Every additive
// phase adjustment in the correction pipeline must pass through here.
func NormalizePhase(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	}
	if deg < -180 {
		deg += 360
	}
	return deg
}

// PeriodHours returns the constituent's period in hours.
func (h HarmonicConstant) PeriodHours() float64 {
	if h.SpeedDegPerHr == 0 {
		return math.Inf(1)
	}
	return 360.0 / h.SpeedDegPerHr
}

// IsSemidiurnal reports whether the constituent's speed falls in the
// twice-daily band.
func (h HarmonicConstant) IsSemidiurnal() bool {
	return h.SpeedDegPerHr >= 26 && h.SpeedDegPerHr <= 32
}

// IsDiurnal reports whether the constituent's speed falls in the daily band.
func (h HarmonicConstant) IsDiurnal() bool {
	return h.SpeedDegPerHr >= 12 && h.SpeedDegPerHr <= 16
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
