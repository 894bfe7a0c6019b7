// Package batch persists processed resolutions and loads them back for the indexer.
package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"regdocs/internal/models"
)

// BackupSuffix is appended to the previous batch when backups are enabled.
const BackupSuffix = ".bak"

// Batch errors.
var (
	ErrInvalidBatch = errors.New("batch does not match the record schema")
	ErrMissingPath  = errors.New("batch path is empty")
)

// Writer writes record batches. Each write replaces the previous batch in
// full; with backups enabled the previous file is kept as <path>.bak.
type Writer struct {
	createBackup bool
}

// NewWriter creates a batch writer.
func NewWriter(createBackup bool) *Writer {
	return &Writer{createBackup: createBackup}
}

// Encode renders records as an indented JSON array. Non-ASCII text and
// HTML characters are written as is.
func Encode(records []models.ExtractedRecord) ([]byte, error) {
	if records == nil {
		records = []models.ExtractedRecord{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	return buf.Bytes(), nil
}

var createTemp = os.CreateTemp

// Write atomically replaces the batch at path with records.
func (w *Writer) Write(path string, records []models.ExtractedRecord) error {
	if path == "" {
		return ErrMissingPath
	}

	data, err := Encode(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create batch directory: %w", err)
	}

	tmp, err := createTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp batch: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("failed to write batch: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to close batch: %w", err)
	}

	// The previous batch is moved aside only once its replacement is on disk.
	if w.createBackup {
		if err := backup(path); err != nil {
			os.Remove(tmpName)

			return err
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("failed to replace batch: %w", err)
	}

	return nil
}

func backup(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := os.Rename(path, path+BackupSuffix); err != nil {
		return fmt.Errorf("failed to back up previous batch: %w", err)
	}

	return nil
}

// Load reads the batch at path, validates it against the record schema and
// decodes it. It is the handoff point for the indexer.
func Load(path string) ([]models.ExtractedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}

	return Decode(data)
}

// Decode validates and decodes a batch document.
func Decode(data []byte) ([]models.ExtractedRecord, error) {
	schema, err := Schema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	var records []models.ExtractedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode batch: %w", err)
	}

	return records, nil
}
