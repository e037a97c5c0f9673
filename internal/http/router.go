package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.ngs.io/tide-engine/internal/regions"
	"go.ngs.io/tide-engine/internal/usecase"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// requestID assigns a correlation ID when the client did not send one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(tides *usecase.Service, regionSvc *regions.Service) *gin.Engine {

	router := gin.Default()
	router.Use(requestID())

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(tides, regionSvc)

	// API v1 routes.
	v1 := router.Group("/v1")

	// Tide information.
	tidesGroup := v1.Group("/tides")
	tidesGroup.GET("/info", handler.GetTideInfo)

	// Regional dataset.
	regionsGroup := v1.Group("/regions")
	regionsGroup.GET("", handler.ListRegions)
	regionsGroup.GET("/nearest", handler.NearestRegions)

	// Constituents.
	v1.GET("/constituents", handler.ListConstituents)

	// Cache statistics.
	v1.GET("/cache/stats", handler.CacheStats)

	// Health check and metrics.
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
