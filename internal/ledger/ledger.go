// Package ledger keeps the history of pipeline runs in SQLite.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"regdocs/internal/models"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoRuns is returned by Latest when a source has no recorded run.
var ErrNoRuns = errors.New("no runs recorded")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT NOT NULL,
	source TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	discovered INTEGER NOT NULL,
	downloaded INTEGER NOT NULL,
	extracted INTEGER NOT NULL,
	quarantined INTEGER NOT NULL,
	batch_path TEXT NOT NULL DEFAULT '',
	batch_sha256 TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, source)
);
CREATE INDEX IF NOT EXISTS runs_source_started ON runs (source, started_at);`

const selectColumns = `run_id, source, started_at, finished_at, discovered, downloaded,
	extracted, quarantined, batch_path, batch_sha256, status, error`

// Ledger records run reports.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path.
// ":memory:" gives a private in-memory ledger.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores one run report.
func (l *Ledger) Record(ctx context.Context, r models.RunReport) error {
	_, err := l.db.ExecContext(ctx, `INSERT INTO runs (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Source,
		r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout),
		r.Discovered, r.Downloaded, r.Extracted, r.Quarantined,
		r.BatchPath, r.BatchHash, string(r.Status), r.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Recent returns up to limit runs, newest first. An empty source matches all.
func (l *Ledger) Recent(ctx context.Context, source string, limit int) ([]models.RunReport, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM runs
		WHERE (? = '' OR source = ?)
		ORDER BY started_at DESC
		LIMIT ?`, source, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []models.RunReport

	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}

		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return reports, nil
}

// Latest returns the newest successful run of source.
func (l *Ledger) Latest(ctx context.Context, source string) (models.RunReport, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM runs
		WHERE source = ? AND status = ?
		ORDER BY started_at DESC
		LIMIT 1`, source, string(models.StatusSuccess))

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RunReport{}, fmt.Errorf("%w: %s", ErrNoRuns, source)
	}

	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (models.RunReport, error) {
	var (
		r                 models.RunReport
		started, finished string
		status            string
	)

	err := s.Scan(&r.RunID, &r.Source, &started, &finished,
		&r.Discovered, &r.Downloaded, &r.Extracted, &r.Quarantined,
		&r.BatchPath, &r.BatchHash, &status, &r.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}

		return r, fmt.Errorf("failed to scan run: %w", err)
	}

	r.Status = models.RunStatus(status)

	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return r, fmt.Errorf("invalid started_at %q: %w", started, err)
	}

	if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return r, fmt.Errorf("invalid finished_at %q: %w", finished, err)
	}

	return r, nil
}
