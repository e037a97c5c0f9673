package astro

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestCalculateMoonPhase_KnownNewMoons checks the age near astronomically
// tabulated new moons.
func TestCalculateMoonPhase_KnownNewMoons(t *testing.T) {
	newMoons := []time.Time{
		time.Date(2024, 1, 11, 11, 57, 0, 0, time.UTC),
		time.Date(2024, 6, 6, 12, 38, 0, 0, time.UTC),
		time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC),
	}
	for _, nm := range newMoons {
		phase, err := CalculateMoonPhase(nm)
		if err != nil {
			t.Fatalf("CalculateMoonPhase(%v): %v", nm, err)
		}
		// Within half a day of a tabulated new moon the age must be near
		// either end of the cycle.
		if phase.AgeDays > 0.5 && phase.AgeDays < SynodicMonthDays-0.5 {
			t.Errorf("age at new moon %v = %.3f days", nm, phase.AgeDays)
		}
		if phase.Illumination > 0.01 {
			t.Errorf("illumination at new moon %v = %.4f, want ~0", nm, phase.Illumination)
		}
	}
}

func TestCalculateMoonPhase_FullMoon(t *testing.T) {
	// Tabulated full moon: 2024-01-25 17:54 UTC.
	phase, err := CalculateMoonPhase(time.Date(2024, 1, 25, 17, 54, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(phase.AgeDays-SynodicMonthDays/2) > 1.0 {
		t.Errorf("age at full moon = %.3f, want ~%.3f", phase.AgeDays, SynodicMonthDays/2)
	}
	if phase.Illumination < 0.99 {
		t.Errorf("illumination at full moon = %.4f, want ~1", phase.Illumination)
	}
	if phase.Phase != PhaseFull {
		t.Errorf("phase = %s, want %s", phase.Phase, PhaseFull)
	}
}

// TestCalculateMoonPhase_AgeRange sweeps several years of dates and checks
// the age invariant.
func TestCalculateMoonPhase_AgeRange(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 2000; d += 17 {
		date := start.AddDate(0, 0, d)
		phase, err := CalculateMoonPhase(date)
		if err != nil {
			t.Fatalf("CalculateMoonPhase(%v): %v", date, err)
		}
		if phase.AgeDays < 0 || phase.AgeDays >= SynodicMonthDays {
			t.Errorf("age at %v = %v outside [0, %v)", date, phase.AgeDays, SynodicMonthDays)
		}
		if phase.Illumination < 0 || phase.Illumination > 1 {
			t.Errorf("illumination at %v = %v outside [0, 1]", date, phase.Illumination)
		}
		if phase.Phase == "" {
			t.Errorf("empty phase name at %v", date)
		}
	}
}

// TestCalculateMoonPhase_HourlySweep walks three years at hourly resolution.
// The daily sweep above misses the short windows at the end of lunations
// longer than the mean synodic month; this one covers them.
func TestCalculateMoonPhase_HourlySweep(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	for date := start; date.Before(end); date = date.Add(time.Hour) {
		phase, err := CalculateMoonPhase(date)
		if err != nil {
			t.Fatalf("CalculateMoonPhase(%v): %v", date, err)
		}
		if phase.AgeDays < 0 || phase.AgeDays >= SynodicMonthDays {
			t.Fatalf("age at %v = %v outside [0, %v)", date, phase.AgeDays, SynodicMonthDays)
		}
	}
}

// TestCalculateMoonPhase_LongLunationTail pins instants shortly before real
// new moons that close lunations longer than the mean month. The age since
// the previous new moon exceeds the mean there and must clamp to the top of
// the cycle instead of failing.
func TestCalculateMoonPhase_LongLunationTail(t *testing.T) {
	instants := []time.Time{
		time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC),   // new moon 2024-09-03 01:55 UTC
		time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC), // new moon 2024-10-02 18:49 UTC
	}
	for _, at := range instants {
		phase, err := CalculateMoonPhase(at)
		if err != nil {
			t.Fatalf("CalculateMoonPhase(%v): %v", at, err)
		}
		if phase.AgeDays < SynodicMonthDays-1 || phase.AgeDays >= SynodicMonthDays {
			t.Errorf("age at %v = %.4f, want just below %.4f", at, phase.AgeDays, SynodicMonthDays)
		}
		if phase.Illumination > 0.01 {
			t.Errorf("illumination at %v = %.4f, want ~0", at, phase.Illumination)
		}
		if phase.Phase != PhaseNew {
			t.Errorf("phase at %v = %s, want %s", at, phase.Phase, PhaseNew)
		}
	}
}

func TestCalculateMoonPhase_AgeAdvances(t *testing.T) {
	base := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	a, err := CalculateMoonPhase(base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := CalculateMoonPhase(base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatal(err)
	}
	if diff := b.AgeDays - a.AgeDays; math.Abs(diff-3) > 0.1 {
		t.Errorf("age advanced %.3f days over 3 days", diff)
	}
}

func TestCalculateMoonPhase_InvalidDates(t *testing.T) {
	if _, err := CalculateMoonPhase(time.Time{}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("zero time: expected ErrInvalidDate, got %v", err)
	}
}

func TestCalculateMoonPhase_OutsideCalibratedRange(t *testing.T) {
	// Dates outside the calibrated window still compute, with a warning.
	phase, err := CalculateMoonPhase(time.Date(1850, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if phase.AgeDays < 0 || phase.AgeDays >= SynodicMonthDays {
		t.Errorf("age = %v outside [0, %v)", phase.AgeDays, SynodicMonthDays)
	}
}
