package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"go.ngs.io/tide-engine/internal/cache"
	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/regions"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "tides.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRegion() regions.Region {
	return regions.Region{
		ID:          "test-bay",
		Name:        "Test Bay",
		Coordinates: domain.Coordinates{Latitude: 35.0, Longitude: 139.5},
		Harmonics: map[string]regions.Harmonic{
			"M2": {AmplitudeCm: 55, PhaseDeg: 138},
			"S2": {AmplitudeCm: 25, PhaseDeg: 168},
			"K1": {AmplitudeCm: 26, PhaseDeg: 160},
			"O1": {AmplitudeCm: 20, PhaseDeg: 140},
		},
		DepthM:           40,
		Kind:             regions.Bay{LengthKm: 70},
		Quality:          regions.QualityHigh,
		Active:           true,
		CoverageRadiusKm: 80,
	}
}

func TestUpsertRegionInsertThenUpdate(t *testing.T) {
	s := openTestStore(t)
	r := sampleRegion()

	inserted, err := s.UpsertRegion(r)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("first upsert must report an insert")
	}

	r.Name = "Renamed Bay"
	inserted, err = s.UpsertRegion(r)
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("second upsert must report an update")
	}

	got, err := s.GetRegion(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "Renamed Bay" {
		t.Errorf("got %+v, want renamed record", got)
	}
}

func TestUpsertRegionRequiresPrincipalHarmonics(t *testing.T) {
	s := openTestStore(t)
	r := sampleRegion()
	delete(r.Harmonics, "S2")

	if _, err := s.UpsertRegion(r); err == nil {
		t.Error("expected error when S2 is missing")
	}
}

func TestRegionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	want := sampleRegion()
	if _, err := s.UpsertRegion(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRegion(want.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("region not found after upsert")
	}

	if got.Coordinates != want.Coordinates {
		t.Errorf("coordinates = %+v, want %+v", got.Coordinates, want.Coordinates)
	}
	bay, ok := got.Kind.(regions.Bay)
	if !ok || bay.LengthKm != 70 {
		t.Errorf("kind = %#v, want Bay{70}", got.Kind)
	}
	if got.Quality != regions.QualityHigh || !got.Active {
		t.Errorf("quality/active = %v/%v", got.Quality, got.Active)
	}
	for name, h := range want.Harmonics {
		if got.Harmonics[name] != h {
			t.Errorf("harmonic %s = %+v, want %+v", name, got.Harmonics[name], h)
		}
	}
}

func TestRegionKindVariants(t *testing.T) {
	s := openTestStore(t)

	strait := sampleRegion()
	strait.ID = "test-strait"
	strait.Kind = regions.Strait{DistanceFromOceanKm: 25}
	open := sampleRegion()
	open.ID = "test-open"
	open.Kind = regions.OpenSea{}

	for _, r := range []regions.Region{strait, open} {
		if _, err := s.UpsertRegion(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetRegion("test-strait")
	if err != nil {
		t.Fatal(err)
	}
	if k, ok := got.Kind.(regions.Strait); !ok || k.DistanceFromOceanKm != 25 {
		t.Errorf("kind = %#v, want Strait{25}", got.Kind)
	}

	got, err = s.GetRegion("test-open")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Kind.(regions.OpenSea); !ok {
		t.Errorf("kind = %#v, want OpenSea", got.Kind)
	}
}

func TestGetRegionMissing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetRegion("nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing region", got)
	}
}

func TestListRegionsActiveFilter(t *testing.T) {
	s := openTestStore(t)

	active := sampleRegion()
	inactive := sampleRegion()
	inactive.ID = "test-inactive"
	inactive.Active = false

	for _, r := range []regions.Region{active, inactive} {
		if _, err := s.UpsertRegion(r); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListRegions(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all regions = %d, want 2", len(all))
	}

	activeOnly, err := s.ListRegions(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != "test-bay" {
		t.Errorf("active regions = %+v, want only test-bay", activeOnly)
	}
}

func TestRegionsInBounds(t *testing.T) {
	s := openTestStore(t)

	north := sampleRegion()
	north.ID = "north"
	north.Coordinates = domain.Coordinates{Latitude: 43, Longitude: 144}
	south := sampleRegion()
	south.ID = "south"
	south.Coordinates = domain.Coordinates{Latitude: 26, Longitude: 127}

	for _, r := range []regions.Region{north, south} {
		if _, err := s.UpsertRegion(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RegionsInBounds(
		domain.Coordinates{Latitude: 45, Longitude: 150},
		domain.Coordinates{Latitude: 40, Longitude: 140},
		true,
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "north" {
		t.Errorf("got %+v, want only north", got)
	}
}

func TestCacheEntryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	e := cache.Entry{
		Key:         "35.66,139.75,2024-01-15",
		Data:        []byte(`{"level":42}`),
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
		AccessCount: 3,
	}
	if err := s.PutEntry(e); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetEntry(e.Key)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("entry not found after put")
	}
	if string(got.Data) != string(e.Data) || got.AccessCount != 3 {
		t.Errorf("got %+v, want %+v", got, e)
	}
	if !got.ExpiresAt.Equal(e.ExpiresAt) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, e.ExpiresAt)
	}

	missing, err := s.GetEntry("absent")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("got %+v, want nil for missing key", missing)
	}
}

func TestDeleteExpired(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()

	for _, e := range []cache.Entry{
		{Key: "old", Data: []byte("x"), CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour)},
		{Key: "fresh", Data: []byte("y"), CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)},
	} {
		if err := s.PutEntry(e); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.DeleteExpired(now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("purged %d entries, want 1", n)
	}

	if got, _ := s.GetEntry("old"); got != nil {
		t.Error("expired entry must be gone")
	}
	if got, _ := s.GetEntry("fresh"); got == nil {
		t.Error("fresh entry must survive")
	}
}

func TestClearEntries(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()

	if err := s.PutEntry(cache.Entry{Key: "k", Data: []byte("v"), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearEntries(); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetEntry("k"); got != nil {
		t.Error("cleared entry must be gone")
	}
}

func TestDeleteEntryIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.DeleteEntry("never-existed"); err != nil {
		t.Errorf("deleting a missing key must not error: %v", err)
	}
}
