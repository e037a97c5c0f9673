package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	sqlitestore "go.ngs.io/tide-engine/internal/adapter/store/sqlite"
	"go.ngs.io/tide-engine/internal/cache"
	"go.ngs.io/tide-engine/internal/correction"
	"go.ngs.io/tide-engine/internal/regions"
	"go.ngs.io/tide-engine/internal/usecase"
)

func newTestRouter(t *testing.T, initialize bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlitestore.New(filepath.Join(t.TempDir(), "tides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	regionSvc := regions.NewService(store)
	tides := usecase.NewService(regionSvc, correction.NewEngine(regionSvc), cache.NewLRU(), nil)
	if initialize {
		require.NoError(t, tides.Initialize())
	}
	return SetupRouter(tides, regionSvc)
}

func doGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetTideInfo(t *testing.T) {
	router := newTestRouter(t, true)

	w := doGet(t, router, "/v1/tides/info?lat=35.655&lon=139.745&time=2024-01-15T12:00:00Z")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		CurrentState string  `json:"current_state"`
		TideType     string  `json:"tide_type"`
		TideStrength float64 `json:"tide_strength"`
		Events       []any   `json:"events"`
		Accuracy     string  `json:"accuracy"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.CurrentState)
	require.NotEmpty(t, body.TideType)
	require.NotEmpty(t, body.Events)
	require.NotEmpty(t, body.Accuracy)
}

func TestGetTideInfoValidation(t *testing.T) {
	router := newTestRouter(t, true)

	for _, path := range []string{
		"/v1/tides/info",
		"/v1/tides/info?lat=abc&lon=139",
		"/v1/tides/info?lat=91&lon=0",
		"/v1/tides/info?lat=35&lon=139&time=not-a-time",
	} {
		w := doGet(t, router, path)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestGetTideInfoBeforeInitialize(t *testing.T) {
	router := newTestRouter(t, false)

	w := doGet(t, router, "/v1/tides/info?lat=35.655&lon=139.745")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListRegions(t *testing.T) {
	router := newTestRouter(t, true)

	w := doGet(t, router, "/v1/regions")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Regions []RegionResponse `json:"regions"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, len(body.Regions), body.Count)
	require.NotZero(t, body.Count)
}

func TestNearestRegions(t *testing.T) {
	router := newTestRouter(t, true)

	w := doGet(t, router, "/v1/regions/nearest?lat=35.5&lon=139.8&limit=3")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Regions []RegionResponse `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Regions)
	require.LessOrEqual(t, len(body.Regions), 3)
	require.Equal(t, "tokyo-bay", body.Regions[0].ID)

	w = doGet(t, router, "/v1/regions/nearest?lat=35.5&lon=139.8&limit=0")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListConstituents(t *testing.T) {
	router := newTestRouter(t, true)

	w := doGet(t, router, "/v1/constituents")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Constituents []ConstituentResponse `json:"constituents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Constituents)

	byName := make(map[string]ConstituentResponse)
	for _, c := range body.Constituents {
		byName[c.Name] = c
	}
	require.InDelta(t, 28.9841042, byName["M2"].SpeedDegPerHr, 1e-6)
	require.InDelta(t, 12.4206, byName["M2"].PeriodHours, 1e-3)
}

func TestHealthAndCacheStats(t *testing.T) {
	router := newTestRouter(t, true)

	w := doGet(t, router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(t, router, "/v1/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats cache.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t, true)

	w := doGet(t, router, "/health")
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))

	// A client-supplied ID is echoed back.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, true)

	w := doGet(t, router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}
