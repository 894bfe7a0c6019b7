// Package main provides the discover command that lists the candidate
// documents of a source without downloading them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"regdocs/internal/config"
	"regdocs/internal/crawler"
	"regdocs/internal/formatter"
	"regdocs/internal/logger"
	"regdocs/internal/models"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	sourceID := flag.String("source", "creg", "Source id to discover")
	asJSON := flag.Bool("json", false, "Print candidates as JSON")
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

	os.Exit(run(cfg, src, *asJSON))
}

func run(cfg *config.Config, src config.SourceConfig, asJSON bool) int {
	lg := logger.New(os.Stderr, cfg.Pipeline.Logging.Level, cfg.Pipeline.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !asJSON {
		fmt.Printf("🔎 Discovering %s (%s)\n", src.ID, src.URL)
	}

	docs, err := discover(ctx, cfg, src, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)

		return 1
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(docs); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to encode candidates: %v\n", err)

			return 1
		}

		return 0
	}

	if len(docs) == 0 {
		fmt.Println("⚠️  No candidate documents found")

		return 1
	}

	rows := make([][]string, 0, len(docs))
	for i, d := range docs {
		rows = append(rows, []string{fmt.Sprint(i + 1), formatter.Truncate(d.Title, 60), d.Locator})
	}

	fmt.Print(formatter.RenderTable([]string{"#", "Title", "Locator"}, rows))
	fmt.Printf("✅ %d candidates\n", len(docs))

	return 0
}

func discover(ctx context.Context, cfg *config.Config, src config.SourceConfig, lg *logger.Logger) ([]models.CandidateDocument, error) {
	if !src.IsRendered() {
		scraper := crawler.NewScraperWithConfig(&cfg.Pipeline.HTTP)

		return crawler.NewStaticDiscoverer(scraper, src, lg).Discover(ctx), nil
	}

	session, err := crawler.NewBrowser(cfg.Browser, cfg.Pipeline.HTTP.UserAgent, lg).Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Release()

	return crawler.NewRenderedDiscoverer(session, src, lg).Discover(ctx), nil
}
