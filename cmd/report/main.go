// Package main provides the report command that prints a persisted batch
// and, when a ledger is configured, the recent run history.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"regdocs/internal/batch"
	"regdocs/internal/config"
	"regdocs/internal/formatter"
	"regdocs/internal/ledger"
	"regdocs/pkg/fingerprint"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	sourceID := flag.String("source", "creg", "Source whose batch is reported")
	batchPath := flag.String("batch", "", "Batch file to read (overrides the source batch_path)")
	ledgerPath := flag.String("ledger", "", "SQLite run ledger path (overrides config)")
	runs := flag.Int("runs", 10, "Number of recent runs to list")
	width := flag.Int("width", 50, "Maximum display width of name and concept columns")
	flag.Parse()

	_ = godotenv.Load()

	cfg, _, err := config.Resolve(*configFile, os.LookupEnv)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	src, err := cfg.SourceByID(*sourceID)
	if err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	path := src.BatchPath
	if *batchPath != "" {
		path = *batchPath
	}

	if *ledgerPath != "" {
		cfg.Pipeline.Ledger.Path = *ledgerPath
	}

	records, err := batch.Load(path)
	if err != nil {
		log.Fatalf("❌ Failed to load batch: %v\n", err)
	}

	fmt.Printf("📄 Batch: %s\n", path)
	fmt.Print(formatter.RecordsTable(records, *width))
	fmt.Printf("✅ %d records\n", len(records))

	if cfg.Pipeline.Ledger.Path == "" {
		return
	}

	os.Exit(history(cfg.Pipeline.Ledger.Path, src.ID, path, *runs))
}

func history(ledgerPath, source, batchPath string, limit int) int {
	ctx := context.Background()

	l, err := ledger.Open(ctx, ledgerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to open ledger: %v\n", err)

		return 1
	}
	defer l.Close()

	reports, err := l.Recent(ctx, source, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)

		return 1
	}

	fmt.Printf("\n🗂️  Recent runs (%s)\n", source)
	fmt.Print(formatter.ReportsTable(reports))

	latest, err := l.Latest(ctx, source)
	if errors.Is(err, ledger.ErrNoRuns) {
		fmt.Println("⚠️  No successful run recorded")

		return 0
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)

		return 1
	}

	if latest.BatchPath != batchPath {
		return 0
	}

	if err := fingerprint.Verify(batchPath, latest.BatchHash); err != nil {
		fmt.Printf("⚠️  Batch changed since run %s: %v\n", latest.RunID, err)

		return 1
	}

	fmt.Printf("🔒 Batch matches run %s\n", latest.RunID)

	return 0
}
