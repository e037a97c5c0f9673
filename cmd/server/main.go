// Package main provides the tide engine HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"

	csvstore "go.ngs.io/tide-engine/internal/adapter/store/csv"
	"go.ngs.io/tide-engine/internal/adapter/store/fesgrid"
	sqlitestore "go.ngs.io/tide-engine/internal/adapter/store/sqlite"
	"go.ngs.io/tide-engine/internal/cache"
	"go.ngs.io/tide-engine/internal/correction"
	httpHandler "go.ngs.io/tide-engine/internal/http"
	"go.ngs.io/tide-engine/internal/regions"
	"go.ngs.io/tide-engine/internal/usecase"
)

const version = "0.1.0"

// Config is read from the environment with the TIDE_ prefix.
type Config struct {
	Port          string `default:"8080"`
	DBPath        string `envconfig:"DB_PATH" default:"./data/tides.db"`
	GridDir       string `envconfig:"GRID_DIR"`
	StationsCSV   string `envconfig:"STATIONS_CSV"`
	CacheCapacity int    `envconfig:"CACHE_CAPACITY" default:"100"`
	CacheTTLHours int    `envconfig:"CACHE_TTL_HOURS" default:"24"`
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tide-engine version %s\n", version)
		return
	}

	var cfg Config
	if err := envconfig.Process("tide", &cfg); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	log.Printf("Starting tide engine server...")
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Database: %s", cfg.DBPath)

	store, err := sqlitestore.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	regionSvc := regions.NewService(store)
	engine := correction.NewEngine(regionSvc)

	lru := cache.NewLRU(
		cache.WithCapacity(cfg.CacheCapacity),
		cache.WithTTL(time.Duration(cfg.CacheTTLHours)*time.Hour),
		cache.WithBacking(store),
	)

	// A station constants file takes precedence over gridded data.
	var grid usecase.GridSource
	switch {
	case cfg.StationsCSV != "":
		log.Printf("Station constants: %s", cfg.StationsCSV)
		grid = csvstore.NewStationStore(cfg.StationsCSV)
	case cfg.GridDir != "":
		log.Printf("Grid directory: %s", cfg.GridDir)
		grid = fesgrid.New(cfg.GridDir)
	}

	tides := usecase.NewService(regionSvc, engine, lru, grid)
	if err := tides.Initialize(); err != nil {
		log.Fatalf("Failed to initialize tide service: %v", err)
	}

	router := httpHandler.SetupRouter(tides, regionSvc)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/tides/info")
	log.Printf("  - GET /v1/regions")
	log.Printf("  - GET /v1/regions/nearest")
	log.Printf("  - GET /v1/constituents")
	log.Printf("  - GET /v1/cache/stats")
	log.Printf("  - GET /health")
	log.Printf("  - GET /metrics")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
