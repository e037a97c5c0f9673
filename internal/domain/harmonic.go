package domain

import (
	"errors"
	"math"
	"time"
)

// ErrNoConstituents is returned when a synthesis operation receives an empty
// constituent set.
var ErrNoConstituents = errors.New("no harmonic constituents")

// referenceEpoch is the shared phase reference for all synthesis: phases are
// calibrated against hours elapsed since the Unix epoch in UTC.
var referenceEpoch = time.Unix(0, 0).UTC()

// Canonical open-coast reference amplitudes in cm for the principal
// semidiurnal constituents. Strength normalization and regional amplitude
// scaling both measure against these.
const (
	ReferenceM2Cm = 50.0
	ReferenceS2Cm = 20.0
)

// samplingStep is the density of curve sampling for extremum detection.
// Six minutes brackets every semidiurnal turning point with margin.
const samplingStep = 6 * time.Minute

// CalculateTideLevel synthesizes the tide level in centimeters at t:
//
//	η(t) = Σ A_k · cos(ω_k·Δt + φ_k)
//
// where Δt is hours since the reference epoch, ω_k is the constituent's
// angular speed in degrees per hour and φ_k its phase in degrees.
func CalculateTideLevel(t time.Time, constants []HarmonicConstant) float64 {
	deltaHours := t.Sub(referenceEpoch).Hours()

	level := 0.0
	for _, c := range constants {
		angleDeg := c.SpeedDegPerHr*deltaHours + c.PhaseDeg
		level += c.AmplitudeCm * math.Cos(Deg2Rad(angleDeg))
	}
	return level
}

// CalculateTideStrength maps the combined semidiurnal amplitude onto a 0-100
// scale against the fixed reference maxima. 50 corresponds to canonical
// open-coast amplitudes; shallow bays with amplified constituents saturate
// toward 100.
func CalculateTideStrength(constants []HarmonicConstant) float64 {
	combined := 0.0
	for _, c := range constants {
		if c.IsSemidiurnal() {
			combined += c.AmplitudeCm
		}
	}

	strength := combined / (2 * (ReferenceM2Cm + ReferenceS2Cm)) * 100
	return math.Max(0, math.Min(100, strength))
}

// FindTidalExtremes samples the synthesized curve densely across
// [start, end], brackets each slope sign change and refines it with
// parabolic interpolation. Events are returned in strictly ascending time
// order with alternating type.
func FindTidalExtremes(start, end time.Time, constants []HarmonicConstant) ([]TideEvent, error) {
	if len(constants) == 0 {
		return nil, ErrNoConstituents
	}
	if !start.Before(end) {
		return []TideEvent{}, nil
	}

	// Sample one step beyond both edges so boundary extrema have neighbors.
	samples := make([]float64, 0, int(end.Sub(start)/samplingStep)+3)
	times := make([]time.Time, 0, cap(samples))
	for t := start.Add(-samplingStep); !t.After(end.Add(samplingStep)); t = t.Add(samplingStep) {
		times = append(times, t)
		samples = append(samples, CalculateTideLevel(t, constants))
	}

	events := make([]TideEvent, 0, 4)
	for i := 1; i < len(samples)-1; i++ {
		prev, curr, next := samples[i-1], samples[i], samples[i+1]

		var kind EventType
		switch {
		case curr > prev && curr >= next:
			kind = EventHigh
		case curr < prev && curr <= next:
			kind = EventLow
		default:
			continue
		}

		at, level := refineExtremum(times[i], prev, curr, next)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		events = append(events, TideEvent{Time: at, Type: kind, LevelCm: level})
	}

	return enforceAlternation(events), nil
}

// refineExtremum fits a parabola through three equally spaced samples and
// returns its vertex. Falls back to the discrete peak when the fit is
// degenerate.
func refineExtremum(peakTime time.Time, h0, h1, h2 float64) (time.Time, float64) {
	stepHours := samplingStep.Hours()

	a := (h2 - 2*h1 + h0) / (2 * stepHours * stepHours)
	b := (h2 - h0) / (2 * stepHours)

	if math.Abs(a) < 1e-12 {
		return peakTime, h1
	}

	dtVertex := -b / (2 * a)
	if math.Abs(dtVertex) > stepHours {
		return peakTime, h1
	}

	refined := peakTime.Add(time.Duration(dtVertex * float64(time.Hour)))
	return refined, h1 + b*dtVertex + a*dtVertex*dtVertex
}

// enforceAlternation drops the weaker of two consecutive same-type events.
// Plateaus in the sampled curve can report an extremum twice.
func enforceAlternation(events []TideEvent) []TideEvent {
	out := events[:0]
	for _, ev := range events {
		if len(out) == 0 || out[len(out)-1].Type != ev.Type {
			out = append(out, ev)
			continue
		}
		last := &out[len(out)-1]
		if (ev.Type == EventHigh && ev.LevelCm > last.LevelCm) ||
			(ev.Type == EventLow && ev.LevelCm < last.LevelCm) {
			*last = ev
		}
	}
	return out
}
