package crawler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"regdocs/internal/logger"
	"regdocs/internal/models"
	"regdocs/pkg/fingerprint"
)

// ErrDownload marks a failed download stage.
var ErrDownload = errors.New("download failed")

// Downloader fetches candidates into a staging directory.
type Downloader struct {
	scraper    *Scraper
	stagingDir string
	ext        string
	workers    int
	attempts   *AttemptLog
	log        *logger.Logger
}

// NewDownloader creates a downloader writing files with extension ext
// (".docx", ".pdf") into stagingDir using at most workers parallel fetches.
func NewDownloader(scraper *Scraper, stagingDir, ext string, workers int, log *logger.Logger) *Downloader {
	if workers < 1 {
		workers = 1
	}

	return &Downloader{
		scraper:    scraper,
		stagingDir: stagingDir,
		ext:        ext,
		workers:    workers,
		attempts:   NewAttemptLog(),
		log:        log,
	}
}

// Attempts returns the attempt log of this downloader.
func (d *Downloader) Attempts() *AttemptLog {
	return d.attempts
}

// Download stages every candidate. The stage is all-or-nothing: the first
// failure cancels the remaining fetches and is returned. Files already
// written stay in place.
func (d *Downloader) Download(ctx context.Context, candidates []models.CandidateDocument) ([]models.StagedFile, error) {
	if err := os.MkdirAll(d.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create staging directory: %w", ErrDownload, err)
	}

	staged := make([]models.StagedFile, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for _, c := range candidates {
		name, err := fingerprint.LocatorName(c.Locator, d.ext)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrDownload, c.Title, err)
		}

		if seen[name] {
			continue
		}

		seen[name] = true
		staged = append(staged, models.StagedFile{
			Name:    name,
			Path:    filepath.Join(d.stagingDir, name),
			Locator: c.Locator,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, f := range staged {
		g.Go(func() error {
			return d.fetchOne(gctx, f)
		})
	}

	if err := g.Wait(); err != nil {
		d.log.Error("❌ Error downloading files", "error", err)

		return nil, err
	}

	d.log.Info(fmt.Sprintf("📥 Downloaded %d files", len(staged)), "dir", d.stagingDir)

	return staged, nil
}

func (d *Downloader) fetchOne(ctx context.Context, f models.StagedFile) error {
	body, status, duration, err := d.scraper.FetchWithMetrics(ctx, f.Locator)
	d.attempts.Record(f.Locator, len(body), err, status, duration)

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownload, f.Locator, err)
	}

	if err := writeAtomic(d.stagingDir, f.Name, body); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownload, f.Locator, err)
	}

	d.log.Debug("File staged", "file", f.Name, "bytes", len(body), "duration", duration)

	return nil
}

func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}
