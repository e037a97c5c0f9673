package cache

import (
	"errors"
	"testing"
	"time"

	"go.ngs.io/tide-engine/internal/domain"
)

func TestNormalizeKey(t *testing.T) {
	date := time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)

	got, err := NormalizeKey(Key{
		Coordinates: domain.Coordinates{Latitude: 35.6547, Longitude: 139.7451},
		Date:        date,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "35.65,139.75,2024-01-05"
	if got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}

func TestNormalizeKeyCollision(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	a, err := NormalizeKey(Key{Coordinates: domain.Coordinates{Latitude: 35.651, Longitude: 139.749}, Date: date})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NormalizeKey(Key{Coordinates: domain.Coordinates{Latitude: 35.654, Longitude: 139.751}, Date: date.Add(20 * time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("keys within rounding tolerance on the same day must collide: %q vs %q", a, b)
	}
}

func TestNormalizeKeyRejectsBadInput(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	_, err := NormalizeKey(Key{Coordinates: domain.Coordinates{Latitude: 91, Longitude: 0}, Date: date})
	if !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}

	_, err = NormalizeKey(Key{Coordinates: domain.Coordinates{Latitude: 35, Longitude: 139}})
	if err == nil {
		t.Error("expected error for zero date")
	}
}
