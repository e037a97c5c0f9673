// Command regions-audit seeds the regional dataset and reports integrity
// issues: missing seed records, duplicate coordinates, out-of-range values.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	sqlitestore "go.ngs.io/tide-engine/internal/adapter/store/sqlite"
	"go.ngs.io/tide-engine/internal/regions"
)

func main() {
	dbPath := flag.String("db", "./data/tides.db", "SQLite database path")
	seedOnly := flag.Bool("seed-only", false, "Seed the dataset and exit without auditing")
	flag.Parse()

	store, err := sqlitestore.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	svc := regions.NewService(store)

	report, err := svc.InitializeDatabase()
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	fmt.Printf("Seed: %d inserted, %d updated\n", report.Inserted, report.Updated)
	for _, msg := range report.Errors {
		fmt.Printf("  seed error: %s\n", msg)
	}

	if *seedOnly {
		return
	}

	integrity, err := svc.CheckDatabaseIntegrity()
	if err != nil {
		log.Fatalf("Integrity check failed: %v", err)
	}

	fmt.Printf("Integrity: %d records (seed defines %d)\n", integrity.RecordCount, integrity.SeedCount)
	if integrity.OK() {
		fmt.Println("  no issues found")
		return
	}
	for _, issue := range integrity.Issues {
		fmt.Printf("  issue: %s\n", issue.Problem)
		fmt.Printf("    hint: %s\n", issue.Hint)
	}
	os.Exit(1)
}
