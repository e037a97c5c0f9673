package http

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/regions"
	"go.ngs.io/tide-engine/internal/usecase"
)

// Handler serves the tide engine over HTTP.
type Handler struct {
	tides     *usecase.Service
	regionSvc *regions.Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(tides *usecase.Service, regionSvc *regions.Service) *Handler {
	return &Handler{
		tides:     tides,
		regionSvc: regionSvc,
	}
}

func parseCoords(c *gin.Context) (domain.Coordinates, bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return domain.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return domain.Coordinates{}, false
	}
	coords := domain.Coordinates{Latitude: lat, Longitude: lon}
	if err := coords.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.Coordinates{}, false
	}
	return coords, true
}

// GetTideInfo handles GET /v1/tides/info.
func (h *Handler) GetTideInfo(c *gin.Context) {
	coords, ok := parseCoords(c)
	if !ok {
		return
	}

	// Default to the current instant when no time is given.
	at := time.Now().UTC()
	if timeStr := c.Query("time"); timeStr != "" {
		parsed, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid time (expected RFC3339): %v", err)})
			return
		}
		at = parsed
	}

	info, err := h.tides.CalculateTideInfo(coords, at)
	if err != nil {
		status := http.StatusInternalServerError
		if err == usecase.ErrNotInitialized {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

// RegionResponse is the wire shape of one calibration region.
type RegionResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Kind       string  `json:"kind"`
	Quality    string  `json:"quality"`
	CoverageKm float64 `json:"coverage_km"`
	DistanceKm float64 `json:"distance_km,omitempty"`
}

func regionResponse(r regions.Region) RegionResponse {
	kind := "open"
	switch r.Kind.(type) {
	case regions.Bay:
		kind = "bay"
	case regions.Strait:
		kind = "strait"
	}
	return RegionResponse{
		ID:         r.ID,
		Name:       r.Name,
		Latitude:   r.Coordinates.Latitude,
		Longitude:  r.Coordinates.Longitude,
		Kind:       kind,
		Quality:    string(r.Quality),
		CoverageKm: r.CoverageRadiusKm,
	}
}

// ListRegions handles GET /v1/regions.
func (h *Handler) ListRegions(c *gin.Context) {
	all := h.tides.Regions()
	response := make([]RegionResponse, len(all))
	for i, r := range all {
		response[i] = regionResponse(r)
	}
	c.JSON(http.StatusOK, gin.H{
		"regions": response,
		"count":   len(response),
	})
}

// NearestRegions handles GET /v1/regions/nearest.
func (h *Handler) NearestRegions(c *gin.Context) {
	coords, ok := parseCoords(c)
	if !ok {
		return
	}

	opts := regions.DefaultNearestOptions()
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		opts.Limit = limit
	}
	if radiusStr := c.Query("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius_km"})
			return
		}
		opts.MaxDistanceKm = radius
	}

	matches := h.regionSvc.FindNearestStations(coords, opts)
	response := make([]RegionResponse, len(matches))
	for i, m := range matches {
		response[i] = regionResponse(m.Region)
		response[i].DistanceKm = m.DistanceKm
	}
	c.JSON(http.StatusOK, gin.H{
		"regions": response,
		"count":   len(response),
	})
}

// ConstituentResponse describes one harmonic constituent.
type ConstituentResponse struct {
	Name          string  `json:"name"`
	SpeedDegPerHr float64 `json:"speed_deg_per_hr"`
	PeriodHours   float64 `json:"period_hours"`
	Description   string  `json:"description,omitempty"`
}

var constituentDescriptions = map[string]string{
	"M2":  "Principal lunar semidiurnal",
	"S2":  "Principal solar semidiurnal",
	"N2":  "Larger lunar elliptic semidiurnal",
	"K2":  "Lunisolar semidiurnal",
	"K1":  "Lunar diurnal",
	"O1":  "Lunar diurnal",
	"P1":  "Solar diurnal",
	"Q1":  "Larger lunar elliptic diurnal",
	"M4":  "Shallow water overtide of M2",
	"M6":  "Shallow water overtide of M2",
	"MS4": "Shallow water quarter diurnal",
}

// ListConstituents handles GET /v1/constituents.
func (h *Handler) ListConstituents(c *gin.Context) {
	names := make([]string, 0, len(domain.StandardSpeeds))
	for name := range domain.StandardSpeeds {
		names = append(names, name)
	}
	sort.Strings(names)

	response := make([]ConstituentResponse, len(names))
	for i, name := range names {
		speed := domain.StandardSpeeds[name]
		response[i] = ConstituentResponse{
			Name:          name,
			SpeedDegPerHr: speed,
			PeriodHours:   360.0 / speed,
			Description:   constituentDescriptions[name],
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"constituents": response,
		"count":        len(response),
	})
}

// CacheStats handles GET /v1/cache/stats.
func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.tides.CacheStats())
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	health := h.tides.HealthCheck()
	status := http.StatusOK
	if !health.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":     statusText(health.Ready),
		"components": health,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

func statusText(ready bool) string {
	if ready {
		return "ok"
	}
	return "initializing"
}
