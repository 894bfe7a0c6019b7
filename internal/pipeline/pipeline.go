// Package pipeline sequences discovery, download, extraction and batch
// persistence for each configured source.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"regdocs/internal/batch"
	"regdocs/internal/config"
	"regdocs/internal/crawler"
	"regdocs/internal/extractor"
	"regdocs/internal/logger"
	"regdocs/internal/models"
	"regdocs/internal/normalizer"
	"regdocs/internal/telemetry"
	"regdocs/pkg/fingerprint"
)

// Report summarizes one source run.
type Report = models.RunReport

// RunRecorder persists run reports; *ledger.Ledger implements it.
type RunRecorder interface {
	Record(ctx context.Context, r models.RunReport) error
}

// Pipeline runs sources end to end. It holds no per-run state.
type Pipeline struct {
	cfg      *config.Config
	scraper  *crawler.Scraper
	browsers crawler.SessionProvider
	writer   *batch.Writer
	recorder RunRecorder
	metrics  *telemetry.Metrics
	clock    func() time.Time
	log      *logger.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithSessionProvider replaces the chromedp browser used by rendered sources.
func WithSessionProvider(sp crawler.SessionProvider) Option {
	return func(p *Pipeline) { p.browsers = sp }
}

// WithScraper replaces the HTTP scraper.
func WithScraper(s *crawler.Scraper) Option {
	return func(p *Pipeline) { p.scraper = s }
}

// WithRecorder records every run report, typically in the ledger.
func WithRecorder(r RunRecorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithMetrics records run counters.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock sets the clock used for reports and record process dates.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) { p.clock = clock }
}

// New creates a pipeline from cfg.
func New(cfg *config.Config, log *logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		scraper: crawler.NewScraperWithConfig(&cfg.Pipeline.HTTP),
		writer:  batch.NewWriter(cfg.Pipeline.Output.CreateBackup),
		metrics: telemetry.Noop(),
		clock:   time.Now,
		log:     log,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.browsers == nil {
		p.browsers = crawler.NewBrowser(cfg.Browser, cfg.Pipeline.HTTP.UserAgent, log)
	}

	return p
}

// RunAll runs every source in order. One source failing never prevents the
// next from running; cancellation stops before the next source starts.
// The returned error joins the errors of all failed sources.
func (p *Pipeline) RunAll(ctx context.Context, sources []config.SourceConfig) ([]*Report, error) {
	reports := make([]*Report, 0, len(sources))

	var errs []error

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		report, err := p.Run(ctx, src)
		reports = append(reports, report)

		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.ID, err))
		}
	}

	return reports, errors.Join(errs...)
}

// Run executes discovery, download, extraction and persistence for one
// source. The report is always returned; err is nil for success and for an
// empty discovery, which is a normal outcome.
func (p *Pipeline) Run(ctx context.Context, src config.SourceConfig) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Source:    src.ID,
		StartedAt: p.clock(),
	}

	log := p.log.With("run_id", report.RunID, "source", src.ID)
	log.Info(fmt.Sprintf("🚀 Starting %s pipeline", src.ID), "url", src.URL)

	err := p.run(ctx, src, report, log)

	report.FinishedAt = p.clock()
	if err != nil {
		report.Error = err.Error()
	}

	p.finish(ctx, report, log)

	return report, err
}

func (p *Pipeline) run(ctx context.Context, src config.SourceConfig, report *Report, log *logger.Logger) error {
	if err := prepareDirs(src); err != nil {
		report.Status = models.StatusAborted

		return err
	}

	candidates := p.discover(ctx, src, log)
	report.Discovered = len(candidates)

	if err := ctx.Err(); err != nil {
		report.Status = models.StatusAborted

		return err
	}

	if len(candidates) == 0 {
		log.Warn("⚠️ No documents found")

		report.Status = models.StatusEmptyDiscovery

		return nil
	}

	downloader := crawler.NewDownloader(p.scraper, src.StagingDir, src.Extension(), p.cfg.Pipeline.Workers.Downloads, log)

	staged, err := downloader.Download(ctx, candidates)
	if err != nil {
		downloader.Attempts().LogSummary(log)

		if ctx.Err() != nil {
			report.Status = models.StatusAborted

			return ctx.Err()
		}

		report.Status = models.StatusDownloadFailed

		return err
	}

	report.Downloaded = len(staged)

	ex, err := extractor.ForFormat(src.Format, extractor.Options{
		MaxScanParagraphs: p.cfg.Pipeline.Extraction.MaxScanParagraphs,
		Clock:             p.clock,
	})
	if err != nil {
		report.Status = models.StatusAborted

		return err
	}

	processor := normalizer.NewProcessor(ex, normalizer.NewQuarantine(src.QuarantineDir), p.writer,
		p.cfg.Pipeline.Workers.Extraction, log)

	outcome, err := processor.ProcessAll(ctx, staged, src.BatchPath)
	if outcome != nil {
		report.Extracted = len(outcome.Records)
		report.Quarantined = len(outcome.Quarantined)
	}

	switch {
	case err == nil:
	case errors.Is(err, normalizer.ErrEmptyBatch):
		report.Status = models.StatusEmptyBatch

		return err
	default:
		report.Status = models.StatusAborted

		return err
	}

	report.Status = models.StatusSuccess
	report.BatchPath = outcome.BatchPath

	if hash, err := fingerprint.FileHash(outcome.BatchPath); err == nil {
		report.BatchHash = hash
	} else {
		log.Warn("⚠️ Failed to hash batch", "error", err)
	}

	return nil
}

// discover lists candidates. Rendered sources get a browser session that is
// released as soon as discovery returns, on every path.
func (p *Pipeline) discover(ctx context.Context, src config.SourceConfig, log *logger.Logger) []models.CandidateDocument {
	if !src.IsRendered() {
		return crawler.NewStaticDiscoverer(p.scraper, src, log).Discover(ctx)
	}

	session, err := p.browsers.Acquire(ctx)
	if err != nil {
		log.Error("❌ Error starting browser", "error", err)

		return []models.CandidateDocument{}
	}
	defer session.Release()

	return crawler.NewRenderedDiscoverer(session, src, log).Discover(ctx)
}

func (p *Pipeline) finish(ctx context.Context, report *Report, log *logger.Logger) {
	// Bookkeeping must survive a cancelled run.
	ctx = context.WithoutCancel(ctx)

	p.metrics.RecordRun(ctx, *report)

	if p.recorder != nil {
		if err := p.recorder.Record(ctx, *report); err != nil {
			log.Warn("⚠️ Failed to record run in ledger", "error", err)
		}
	}

	args := []any{
		"status", report.Status,
		"discovered", report.Discovered,
		"downloaded", report.Downloaded,
		"extracted", report.Extracted,
		"quarantined", report.Quarantined,
		"duration", report.Duration(),
	}

	if report.Succeeded() {
		log.Info("✅ Pipeline finished", append(args, "batch", report.BatchPath)...)

		return
	}

	log.Warn("⚠️ Pipeline finished without a batch", append(args, "error", report.Error)...)
}

func prepareDirs(src config.SourceConfig) error {
	for _, dir := range []string{src.StagingDir, src.QuarantineDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}
