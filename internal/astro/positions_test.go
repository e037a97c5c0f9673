package astro

import (
	"testing"
	"time"
)

func TestCalculateCelestialPositions(t *testing.T) {
	pos, err := CalculateCelestialPositions(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	if pos.Sun.LongitudeDeg < 0 || pos.Sun.LongitudeDeg >= 360 {
		t.Errorf("sun longitude = %v outside [0, 360)", pos.Sun.LongitudeDeg)
	}
	if pos.Moon.LongitudeDeg < 0 || pos.Moon.LongitudeDeg >= 360 {
		t.Errorf("moon longitude = %v outside [0, 360)", pos.Moon.LongitudeDeg)
	}

	// Mid-January the Sun sits in Capricorn, around 295 degrees ecliptic.
	if pos.Sun.LongitudeDeg < 290 || pos.Sun.LongitudeDeg > 300 {
		t.Errorf("sun longitude = %.2f, want ~295 for mid January", pos.Sun.LongitudeDeg)
	}

	// Lunar distance stays within the orbit's bounds.
	if pos.Moon.DistanceKm < 356000 || pos.Moon.DistanceKm > 407000 {
		t.Errorf("moon distance = %.0f km outside orbital range", pos.Moon.DistanceKm)
	}

	// Lunar latitude never exceeds the orbital inclination by much.
	if pos.Moon.LatitudeDeg < -5.5 || pos.Moon.LatitudeDeg > 5.5 {
		t.Errorf("moon latitude = %.2f outside [-5.5, 5.5]", pos.Moon.LatitudeDeg)
	}
}

func TestCalculateCelestialPositions_InvalidDate(t *testing.T) {
	if _, err := CalculateCelestialPositions(time.Time{}); err == nil {
		t.Error("expected error for zero time")
	}
}

func TestCalculateAll_Consistent(t *testing.T) {
	date := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) // tabulated new moon
	phase, pos, err := CalculateAll(date)
	if err != nil {
		t.Fatal(err)
	}

	// At new moon the Sun and Moon share an ecliptic longitude.
	sep := pos.Moon.LongitudeDeg - pos.Sun.LongitudeDeg
	for sep < -180 {
		sep += 360
	}
	for sep > 180 {
		sep -= 360
	}
	if sep < -15 || sep > 15 {
		t.Errorf("sun-moon separation at new moon = %.2f degrees", sep)
	}
	if phase.AgeDays > 1.0 && phase.AgeDays < SynodicMonthDays-1.0 {
		t.Errorf("age at new moon = %.3f days", phase.AgeDays)
	}
}
