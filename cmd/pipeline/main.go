// Package main provides the pipeline command that discovers, downloads and
// extracts resolutions for every enabled source.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"regdocs/internal/config"
	"regdocs/internal/formatter"
	"regdocs/internal/ledger"
	"regdocs/internal/logger"
	"regdocs/internal/models"
	"regdocs/internal/pipeline"
	"regdocs/internal/telemetry"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file (default $REGDOCS_CONFIG or "+config.DefaultConfigPath+")")
	sourceID := flag.String("source", "", "Run only this source id (e.g. creg, upme)")
	initPath := flag.String("init", "", "Write the default configuration to this path and exit")
	ledgerPath := flag.String("ledger", "", "SQLite run ledger path (overrides config)")
	showMetrics := flag.Bool("metrics", false, "Print metric totals at exit")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	_ = godotenv.Load()

	if *initPath != "" {
		if err := config.DefaultConfig().SaveConfig(*initPath); err != nil {
			log.Fatalf("❌ Failed to write config: %v\n", err)
		}

		fmt.Printf("✅ Default configuration written to: %s\n", *initPath)

		return
	}

	cfg, origin, err := config.Resolve(*configFile, os.LookupEnv)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}

	if *ledgerPath != "" {
		cfg.Pipeline.Ledger.Path = *ledgerPath
	}

	fmt.Printf("⚙️  Configuration: %s\n", origin)
	fmt.Printf("✅ %s\n\n", cfg)

	sources := cfg.GetEnabledSources()
	if *sourceID != "" {
		src, err := cfg.SourceByID(*sourceID)
		if err != nil {
			log.Fatalf("❌ %v\n", err)
		}

		sources = []config.SourceConfig{src}
	}

	os.Exit(run(cfg, sources, *showMetrics))
}

func run(cfg *config.Config, sources []config.SourceConfig, showMetrics bool) int {
	lg := logger.New(os.Stderr, cfg.Pipeline.Logging.Level, cfg.Pipeline.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := telemetry.NewProvider()
	defer provider.Shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(provider.Meter())
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create metrics: %v\n", err)

		return 1
	}

	opts := []pipeline.Option{pipeline.WithMetrics(metrics)}

	if cfg.Pipeline.Ledger.Path != "" {
		l, err := ledger.Open(ctx, cfg.Pipeline.Ledger.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to open ledger: %v\n", err)

			return 1
		}
		defer l.Close()

		opts = append(opts, pipeline.WithRecorder(l))
	}

	printHeader(sources)

	startTime := time.Now()
	p := pipeline.New(cfg, lg, opts...)

	reports, runErr := p.RunAll(ctx, sources)

	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Summary Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Print(formatter.ReportsTable(derefReports(reports)))
	fmt.Printf("Total Duration: %v\n", time.Since(startTime).Round(time.Millisecond))

	if runErr != nil {
		fmt.Printf("⚠️  Errors encountered:\n")

		for _, line := range strings.Split(runErr.Error(), "\n") {
			fmt.Printf("  - %s\n", line)
		}
	}

	if showMetrics {
		printMetrics(provider)
	}

	fmt.Println("------------------------------------------------")

	if !anySucceeded(reports) {
		return 1
	}

	return 0
}

func printHeader(sources []config.SourceConfig) {
	fmt.Println("📚 Regulatory Resolution Pipeline")
	fmt.Printf("Sources: %d\n", len(sources))

	for i, src := range sources {
		fmt.Printf("  %d. %s (%s, %s) -> %s\n", i+1, src.ID, src.Discovery, src.Format, src.BatchPath)
	}

	fmt.Println()
}

func printMetrics(provider *telemetry.Provider) {
	totals, err := provider.Totals(context.Background())
	if err != nil {
		fmt.Printf("⚠️  Metrics unavailable: %v\n", err)

		return
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	fmt.Println("📈 Metrics:")

	for _, k := range keys {
		fmt.Printf("  %s = %d\n", k, totals[k])
	}
}

func derefReports(reports []*pipeline.Report) []models.RunReport {
	out := make([]models.RunReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, *r)
	}

	return out
}

func anySucceeded(reports []*pipeline.Report) bool {
	for _, r := range reports {
		if r.Succeeded() {
			return true
		}
	}

	return false
}

func printUsage() {
	fmt.Println("Usage: ./bin/pipeline [OPTIONS]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  1. Config-based:   ./bin/pipeline -config configs/pipeline.yaml")
	fmt.Println("  2. Default config: ./bin/pipeline (reads $REGDOCS_CONFIG or configs/pipeline.yaml, else built-in sources)")
	fmt.Println("  3. Single source:  ./bin/pipeline -source creg")
	fmt.Println("  4. Write config:   ./bin/pipeline -init configs/pipeline.yaml")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  REGDOCS_CONFIG, REGDOCS_LOG_LEVEL, REGDOCS_LEDGER_PATH, REGDOCS_CHROME_PATH (a .env file is read if present)")
}
