// Package extractor turns staged resolution files into records.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"regdocs/internal/config"
	"regdocs/internal/models"
)

// Extraction errors.
var (
	// ErrStructuralParse means the required structural markers are absent.
	ErrStructuralParse = errors.New("structural parse error")
	// ErrFormat means the file cannot be opened as the expected format.
	ErrFormat = errors.New("format error")
	// ErrUnsupportedFormat is returned by ForFormat for unknown formats.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Extractor converts one staged file into a record.
type Extractor interface {
	Extract(ctx context.Context, path string) (*models.ExtractedRecord, error)
}

// Clock returns the current time; records are stamped with it.
type Clock func() time.Time

// Options configure the extractors.
type Options struct {
	// MaxScanParagraphs caps each marker scan; 0 means the whole document.
	MaxScanParagraphs int
	Clock             Clock
}

func (o Options) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}

	return o.Clock()
}

// ForFormat returns the extractor for a document format ("docx" or "pdf").
func ForFormat(format string, opts Options) (Extractor, error) {
	switch format {
	case config.FormatDocx:
		return NewDocxExtractor(opts), nil
	case config.FormatPDF:
		return NewPDFExtractor(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
