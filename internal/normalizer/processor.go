// Package normalizer runs extraction over staged files, isolating failures
// in quarantine and persisting the surviving records.
package normalizer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"regdocs/internal/extractor"
	"regdocs/internal/logger"
	"regdocs/internal/models"
)

// ErrEmptyBatch means no record survived extraction; nothing was written.
var ErrEmptyBatch = errors.New("no records extracted, batch not written")

// BatchWriter persists a batch of records at path.
type BatchWriter interface {
	Write(path string, records []models.ExtractedRecord) error
}

// QuarantinedFile describes a staged file moved to quarantine.
type QuarantinedFile struct {
	Name   string
	Path   string
	Reason string
}

// Outcome summarizes one ProcessAll call.
type Outcome struct {
	Records     []models.ExtractedRecord
	Processed   []string
	Quarantined []QuarantinedFile
	// Pending lists staged files left untouched after cancellation.
	Pending   []string
	BatchPath string
}

// Processor extracts staged files with per-file isolation.
type Processor struct {
	extractor  extractor.Extractor
	validator  *Validator
	quarantine *Quarantine
	writer     BatchWriter
	workers    int
	log        *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(ex extractor.Extractor, quarantine *Quarantine, writer BatchWriter, workers int, log *logger.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}

	return &Processor{
		extractor:  ex,
		validator:  NewValidator(),
		quarantine: quarantine,
		writer:     writer,
		workers:    workers,
		log:        log,
	}
}

type fileResult struct {
	record      *models.ExtractedRecord
	quarantined *QuarantinedFile
	done        bool
}

// ProcessAll extracts every staged file. A successful file contributes a
// record and is deleted; a failing file is moved to quarantine and the
// loop continues. A non-empty batch is written to batchPath, replacing any
// previous one. An empty batch returns ErrEmptyBatch without writing.
// On cancellation, files not yet processed stay staged and nothing is written.
func (p *Processor) ProcessAll(ctx context.Context, files []models.StagedFile, batchPath string) (*Outcome, error) {
	results := make([]fileResult, len(files))

	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, f := range files {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			results[i] = p.processOne(ctx, f)

			return nil
		})
	}

	_ = g.Wait()

	outcome := &Outcome{}

	for i, r := range results {
		switch {
		case r.record != nil:
			outcome.Records = append(outcome.Records, *r.record)
			outcome.Processed = append(outcome.Processed, files[i].Name)
		case r.quarantined != nil:
			outcome.Quarantined = append(outcome.Quarantined, *r.quarantined)
		case !r.done:
			outcome.Pending = append(outcome.Pending, files[i].Name)
		}
	}

	if err := ctx.Err(); err != nil {
		p.log.Warn("⚠️ Processing cancelled, batch not written", "pending", len(outcome.Pending))

		return outcome, err
	}

	if len(outcome.Records) == 0 {
		p.log.Error("❌ No resolutions processed", "quarantined", len(outcome.Quarantined))

		return outcome, ErrEmptyBatch
	}

	if err := p.writer.Write(batchPath, outcome.Records); err != nil {
		return outcome, fmt.Errorf("failed to write batch: %w", err)
	}

	outcome.BatchPath = batchPath
	p.log.Info(fmt.Sprintf("✅ Saved %d resolutions", len(outcome.Records)),
		"path", batchPath, "quarantined", len(outcome.Quarantined))

	return outcome, nil
}

func (p *Processor) processOne(ctx context.Context, f models.StagedFile) fileResult {
	log := p.log.With("file", f.Name)

	rec, err := p.extractor.Extract(ctx, f.Path)
	if err == nil {
		err = p.validator.Validate(rec)
	}

	if err != nil {
		// Cancellation is not the document's fault; leave it staged.
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return fileResult{}
		}

		dest, moveErr := p.quarantine.Move(f.Path)
		if moveErr != nil {
			log.Error("❌ Failed to quarantine file", "error", moveErr, "cause", err)

			return fileResult{done: true}
		}

		log.Warn("⚠️ Error processing resolution, moved to quarantine", "error", err, "quarantine", dest)

		return fileResult{
			quarantined: &QuarantinedFile{Name: f.Name, Path: dest, Reason: err.Error()},
			done:        true,
		}
	}

	if err := os.Remove(f.Path); err != nil {
		log.Warn("⚠️ Failed to delete processed file", "error", err)
	}

	log.Debug("Resolution processed")

	return fileResult{record: rec, done: true}
}
