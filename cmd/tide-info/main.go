// Command tide-info prints the tide record for a coordinate and instant.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	sqlitestore "go.ngs.io/tide-engine/internal/adapter/store/sqlite"
	"go.ngs.io/tide-engine/internal/cache"
	"go.ngs.io/tide-engine/internal/correction"
	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/regions"
	"go.ngs.io/tide-engine/internal/usecase"
)

func main() {
	lat := flag.Float64("lat", 35.655, "Latitude in decimal degrees")
	lon := flag.Float64("lon", 139.745, "Longitude in decimal degrees")
	timeStr := flag.String("time", "", "Instant as RFC3339 (default: now)")
	dbPath := flag.String("db", "./data/tides.db", "SQLite database path")
	asJSON := flag.Bool("json", false, "Print the full record as JSON")
	flag.Parse()

	at := time.Now()
	if *timeStr != "" {
		parsed, err := time.Parse(time.RFC3339, *timeStr)
		if err != nil {
			log.Fatalf("Invalid -time (expected RFC3339): %v", err)
		}
		at = parsed
	}

	store, err := sqlitestore.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	regionSvc := regions.NewService(store)
	tides := usecase.NewService(regionSvc, correction.NewEngine(regionSvc), cache.NewLRU(), nil)
	if err := tides.Initialize(); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	coords := domain.Coordinates{Latitude: *lat, Longitude: *lon}
	info, err := tides.CalculateTideInfo(coords, at)
	if err != nil {
		log.Fatalf("Calculation failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(info); err != nil {
			log.Fatalf("Encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Tide at (%.4f, %.4f) %s\n", *lat, *lon, at.Format(time.RFC3339))
	fmt.Printf("  Level:    %.1f cm (%s)\n", info.CurrentLevelCm, info.CurrentState)
	fmt.Printf("  Type:     %s (strength %.0f)\n", info.TideType, info.TideStrength)
	fmt.Printf("  Accuracy: %s\n", info.Accuracy)
	if info.NextEvent != nil {
		fmt.Printf("  Next:     %s water at %s (%.1f cm)\n",
			info.NextEvent.Type, info.NextEvent.Time.Format("15:04"), info.NextEvent.LevelCm)
	}
	fmt.Println("  Events:")
	for _, e := range info.Events {
		fmt.Printf("    %s  %-4s  %7.1f cm\n", e.Time.Format("15:04"), e.Type, e.LevelCm)
	}
}
