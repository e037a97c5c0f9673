package usecase

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.ngs.io/tide-engine/internal/adapter/store/sqlite"
	"go.ngs.io/tide-engine/internal/cache"
	"go.ngs.io/tide-engine/internal/correction"
	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/regions"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "tides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	regionSvc := regions.NewService(st)
	svc := NewService(regionSvc, correction.NewEngine(regionSvc), cache.NewLRU(), nil)
	require.NoError(t, svc.Initialize())
	return svc
}

func TestCalculateTideInfoTokyoBay(t *testing.T) {
	svc := newTestService(t)

	coords := domain.Coordinates{Latitude: 35.655, Longitude: 139.745}
	date := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	info, err := svc.CalculateTideInfo(coords, date)
	require.NoError(t, err)

	require.NotEmpty(t, info.Events)
	for i := 1; i < len(info.Events); i++ {
		require.True(t, info.Events[i].Time.After(info.Events[i-1].Time),
			"events must be strictly time-ordered")
		require.NotEqual(t, info.Events[i].Type, info.Events[i-1].Type,
			"events must alternate type")
	}

	if info.NextEvent != nil {
		require.True(t, info.NextEvent.Time.After(date))
		for _, e := range info.Events {
			if e.Time.After(date) {
				require.Equal(t, e.Time, info.NextEvent.Time,
					"next event must be the first one after the query instant")
				break
			}
		}
		want := domain.StateRising
		if info.NextEvent.Time.Sub(date) <= slackWindow {
			want = domain.StateHigh
			if info.NextEvent.Type == domain.EventLow {
				want = domain.StateLow
			}
		} else if info.NextEvent.Type == domain.EventLow {
			want = domain.StateFalling
		}
		require.Equal(t, want, info.CurrentState)
	}

	require.NotEmpty(t, info.TideType)
	require.GreaterOrEqual(t, info.TideStrength, 0.0)
	require.LessOrEqual(t, info.TideStrength, 100.0)
	require.NotEmpty(t, info.Accuracy)
	require.Equal(t, coords, info.Location)
}

func TestCalculateTideInfoCached(t *testing.T) {
	svc := newTestService(t)

	coords := domain.Coordinates{Latitude: 35.655, Longitude: 139.745}
	date := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	first, err := svc.CalculateTideInfo(coords, date)
	require.NoError(t, err)

	// Same rounded coordinate and calendar day hits the cache.
	again, err := svc.CalculateTideInfo(domain.Coordinates{Latitude: 35.651, Longitude: 139.749},
		date.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, first.CurrentLevelCm, again.CurrentLevelCm)
	require.Equal(t, first.Events, again.Events)

	stats := svc.CacheStats()
	require.Equal(t, int64(1), stats.HitCount)
	require.Equal(t, int64(1), stats.MissCount)
}

func TestCalculateTideInfoRequiresInitialize(t *testing.T) {
	st, err := sqlite.New(filepath.Join(t.TempDir(), "tides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	regionSvc := regions.NewService(st)
	svc := NewService(regionSvc, correction.NewEngine(regionSvc), cache.NewLRU(), nil)

	_, err = svc.CalculateTideInfo(domain.Coordinates{Latitude: 35, Longitude: 139}, time.Now())
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestCalculateTideInfoRejectsBadInput(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CalculateTideInfo(domain.Coordinates{Latitude: 91, Longitude: 0}, time.Now())
	require.ErrorIs(t, err, domain.ErrInvalidCoordinates)

	_, err = svc.CalculateTideInfo(domain.Coordinates{Latitude: 35, Longitude: 139}, time.Time{})
	require.Error(t, err)
}

func TestCurrentState(t *testing.T) {
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		next *domain.TideEvent
		want domain.TideState
	}{
		{"no events", nil, domain.StateRising},
		{"approaching high", &domain.TideEvent{Time: at.Add(3 * time.Hour), Type: domain.EventHigh}, domain.StateRising},
		{"approaching low", &domain.TideEvent{Time: at.Add(3 * time.Hour), Type: domain.EventLow}, domain.StateFalling},
		{"at high water", &domain.TideEvent{Time: at.Add(5 * time.Minute), Type: domain.EventHigh}, domain.StateHigh},
		{"at low water", &domain.TideEvent{Time: at.Add(5 * time.Minute), Type: domain.EventLow}, domain.StateLow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, currentState(c.next, at))
		})
	}
}

func TestBaseHarmonicsDeterministic(t *testing.T) {
	svc := newTestService(t)
	region := svc.Regions()[0]

	coords := domain.Coordinates{Latitude: region.Coordinates.Latitude, Longitude: region.Coordinates.Longitude}
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	a := svc.baseHarmonics(region, coords, date)
	b := svc.baseHarmonics(region, coords, date)
	require.Equal(t, a, b)
	require.NotEmpty(t, a)
	for _, c := range a {
		require.GreaterOrEqual(t, c.AmplitudeCm, 0.0)
	}
}

func TestHealthCheck(t *testing.T) {
	svc := newTestService(t)
	h := svc.HealthCheck()
	require.True(t, h.Ready)
	require.True(t, h.Regions)
	require.True(t, h.Corrections)
	require.True(t, h.Cache)
	require.False(t, h.Grid)
}
