// Package astro computes lunar age, phase and illumination plus apparent
// Sun/Moon ecliptic positions from closed-form periodic-term expansions.
// Nothing here touches the network or any lookup table on disk.
package astro

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"go.ngs.io/tide-engine/internal/domain"
)

// SynodicMonthDays is the mean interval between successive new moons.
const SynodicMonthDays = 29.530588853

// Calibrated accuracy range of the truncated lunation series. Dates outside
// still return a best-effort result with a logged warning.
const (
	minCalibratedYear = 1900
	maxCalibratedYear = 2100
)

// ErrInvalidDate is returned when a timestamp is not a usable instant.
var ErrInvalidDate = errors.New("invalid date")

// PhaseName is one of the eight named lunar phases.
type PhaseName string

const (
	PhaseNew            PhaseName = "new"
	PhaseWaxingCrescent PhaseName = "waxing_crescent"
	PhaseFirstQuarter   PhaseName = "first_quarter"
	PhaseWaxingGibbous  PhaseName = "waxing_gibbous"
	PhaseFull           PhaseName = "full"
	PhaseWaningGibbous  PhaseName = "waning_gibbous"
	PhaseLastQuarter    PhaseName = "last_quarter"
	PhaseWaningCrescent PhaseName = "waning_crescent"
)

var phaseNames = [8]PhaseName{
	PhaseNew, PhaseWaxingCrescent, PhaseFirstQuarter, PhaseWaxingGibbous,
	PhaseFull, PhaseWaningGibbous, PhaseLastQuarter, PhaseWaningCrescent,
}

// MoonPhase describes the Moon's position in its synodic cycle.
type MoonPhase struct {
	AgeDays      float64   // Days since the most recent new moon, in [0, SynodicMonthDays).
	Phase        PhaseName
	Illumination float64 // Illuminated fraction of the disc, in [0, 1].
}

// Julian day of the Unix epoch, and of the reference new moon
// (2000-01-06 18:14 UTC) anchoring the lunation count.
const (
	unixEpochJD   = 2440587.5
	refNewMoonJDE = 2451550.09766
)

// julianDay converts a time to its Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.UnixMilli())/86400000.0 + unixEpochJD
}

// CalculateMoonPhase computes the lunar age, named phase and illuminated
// fraction for an instant.
func CalculateMoonPhase(date time.Time) (MoonPhase, error) {
	if err := checkDate(date); err != nil {
		return MoonPhase{}, err
	}

	jd := julianDay(date)

	// Estimate the nearest lunation index, then search a small window of
	// candidates for the most recent new moon at or before the instant. The
	// perturbation series can move a new moon up to half a day from its
	// mean instant.
	kEst := math.Round((jd - refNewMoonJDE) / SynodicMonthDays)

	age, ok := ageSincePriorNewMoon(jd, kEst, 2)
	if !ok {
		age, ok = ageSincePriorNewMoon(jd, kEst, 5)
	}
	if !ok {
		return MoonPhase{}, fmt.Errorf("%w: no lunation brackets %s", ErrInvalidDate, date.Format(time.RFC3339))
	}

	// True lunations run up to about 29.8 days. Near the end of a long one
	// the age since the previous new moon overshoots the mean month while
	// the next new moon is still ahead; clamp just below the cycle bound.
	if age >= SynodicMonthDays {
		age = math.Nextafter(SynodicMonthDays, 0)
	}

	frac := age / SynodicMonthDays
	idx := int(math.Floor(frac*8+0.5)) % 8

	illum := (1 - math.Cos(2*math.Pi*frac)) / 2
	illum = math.Max(0, math.Min(1, illum))

	return MoonPhase{
		AgeDays:      age,
		Phase:        phaseNames[idx],
		Illumination: illum,
	}, nil
}

// ageSincePriorNewMoon evaluates new-moon instants for lunations within
// +/-window of kEst and returns the smallest non-negative age, that is the
// elapsed time since the most recent new moon at or before jd.
func ageSincePriorNewMoon(jd, kEst float64, window int) (float64, bool) {
	best := math.Inf(1)
	found := false
	for dk := -window; dk <= window; dk++ {
		k := kEst + float64(dk)
		age := jd - trueNewMoonJDE(k)
		if age >= 0 && age < best {
			best = age
			found = true
		}
	}
	return best, found
}

// trueNewMoonJDE returns the Julian ephemeris day of the new moon for
// lunation k, as the mean instant plus a truncated perturbation series
// (Meeus, Astronomical Algorithms, ch. 49).
func trueNewMoonJDE(k float64) float64 {
	T := k / 1236.85

	jde := refNewMoonJDE + SynodicMonthDays*k +
		0.00015437*T*T - 0.000000150*T*T*T + 0.00000000073*T*T*T*T

	// Eccentricity factor of Earth's orbit.
	E := 1 - 0.002516*T - 0.0000074*T*T

	// Fundamental arguments at lunation k, degrees.
	M := 2.5534 + 29.10535670*k - 0.0000014*T*T - 0.00000011*T*T*T
	Mp := 201.5643 + 385.81693528*k + 0.0107582*T*T + 0.00001238*T*T*T - 0.000000058*T*T*T*T
	F := 160.7108 + 390.67050284*k - 0.0016118*T*T - 0.00000227*T*T*T + 0.000000011*T*T*T*T
	Om := 124.7746 - 1.56375588*k + 0.0020672*T*T + 0.00000215*T*T*T

	sin := func(deg float64) float64 { return math.Sin(domain.Deg2Rad(deg)) }

	corr := -0.40720*sin(Mp) +
		0.17241*E*sin(M) +
		0.01608*sin(2*Mp) +
		0.01039*sin(2*F) +
		0.00739*E*sin(Mp-M) -
		0.00514*E*sin(Mp+M) +
		0.00208*E*E*sin(2*M) -
		0.00111*sin(Mp-2*F) -
		0.00057*sin(Mp+2*F) +
		0.00056*E*sin(2*Mp+M) -
		0.00042*sin(3*Mp) +
		0.00042*E*sin(M+2*F) +
		0.00038*E*sin(M-2*F) -
		0.00024*E*sin(2*Mp-M) -
		0.00017*sin(Om)

	return jde + corr
}

// checkDate rejects unusable instants and warns once per call for dates
// outside the calibrated accuracy range.
func checkDate(date time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("%w: zero time", ErrInvalidDate)
	}
	year := date.Year()
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	if year < minCalibratedYear || year > maxCalibratedYear {
		log.Printf("astro: year %d outside calibrated range [%d, %d], result is best-effort",
			year, minCalibratedYear, maxCalibratedYear)
	}
	return nil
}
