package normalizer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Quarantine holds staged files that failed extraction, for manual review.
type Quarantine struct {
	dir string
}

// NewQuarantine creates a quarantine rooted at dir.
func NewQuarantine(dir string) *Quarantine {
	return &Quarantine{dir: dir}
}

// Dir returns the quarantine directory.
func (q *Quarantine) Dir() string {
	return q.dir
}

// Move renames the file at path into the quarantine directory and returns
// its new location. The file is moved, never copied.
func (q *Quarantine) Move(path string) (string, error) {
	if err := os.MkdirAll(q.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create quarantine directory: %w", err)
	}

	dest := filepath.Join(q.dir, filepath.Base(path))

	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("failed to quarantine %s: %w", path, err)
	}

	return dest, nil
}
