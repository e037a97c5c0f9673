// Command tide-validate compares engine predictions against locally stored
// hourly observation files and prints agreement statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	sqlitestore "go.ngs.io/tide-engine/internal/adapter/store/sqlite"
	"go.ngs.io/tide-engine/internal/correction"
	"go.ngs.io/tide-engine/internal/domain"
	"go.ngs.io/tide-engine/internal/obs"
	"go.ngs.io/tide-engine/internal/regions"
)

func main() {
	obsPath := flag.String("obs", "", "Path to a fixed-width hourly observation file (required)")
	station := flag.String("station", "", "Two-character station code (required)")
	lat := flag.Float64("lat", 0, "Station latitude in decimal degrees")
	lon := flag.Float64("lon", 0, "Station longitude in decimal degrees")
	dbPath := flag.String("db", "./data/tides.db", "SQLite database path")
	flag.Parse()

	if *obsPath == "" || *station == "" {
		flag.Usage()
		log.Fatal("both -obs and -station are required")
	}

	coords := domain.Coordinates{Latitude: *lat, Longitude: *lon}
	if err := coords.Validate(); err != nil {
		log.Fatalf("Invalid station coordinates: %v", err)
	}

	records, err := obs.ReadStationFile(*obsPath, *station)
	if err != nil {
		log.Fatalf("Failed to read observations: %v", err)
	}
	samples := obs.Samples(records)

	store, err := sqlitestore.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	regionSvc := regions.NewService(store)
	if _, err := regionSvc.InitializeDatabase(); err != nil {
		log.Fatalf("Failed to seed dataset: %v", err)
	}

	match := regionSvc.GetBestRegionForCoordinates(coords)
	if match == nil {
		log.Fatalf("No regional data covers (%.4f, %.4f)", *lat, *lon)
	}

	base := make([]domain.HarmonicConstant, 0, len(match.Region.Harmonics))
	for name, h := range match.Region.Harmonics {
		c, err := domain.NewHarmonicConstant(name, h.AmplitudeCm, h.PhaseDeg)
		if err != nil {
			continue
		}
		base = append(base, c)
	}

	engine := correction.NewEngine(regionSvc)
	result, err := engine.ApplyCorrectionFactors(coords, base, correction.DefaultOptions())
	if err != nil {
		log.Fatalf("Correction failed: %v", err)
	}

	cmp, err := obs.Compare(samples, func(at time.Time) float64 {
		return domain.CalculateTideLevel(at, result.Constants)
	})
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	fmt.Printf("Station %s vs region %s (%.1f km away)\n", *station, match.Region.ID, match.DistanceKm)
	fmt.Printf("  Samples: %d over %d days\n", cmp.Samples, len(records))
	fmt.Printf("  RMSE:    %.1f cm\n", cmp.RMSECm)
	fmt.Printf("  Bias:    %+.1f cm\n", cmp.BiasCm)
	fmt.Printf("  Max:     %.1f cm\n", cmp.MaxCm)
}
