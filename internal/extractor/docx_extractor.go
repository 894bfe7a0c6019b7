package extractor

import (
	"context"
	"fmt"
	"strings"

	"regdocs/internal/models"
	"regdocs/pkg/textnorm"
)

const (
	titleMarker    = "RESOLUCION"
	dateLinePrefix = "("
)

// DocxExtractor reads CREG resolutions. It is strict: a document without
// the title, the date line or the concept fails with ErrStructuralParse.
type DocxExtractor struct {
	opts Options
}

// NewDocxExtractor creates a docx extractor.
func NewDocxExtractor(opts Options) *DocxExtractor {
	return &DocxExtractor{opts: opts}
}

// Extract reads the docx at path and locates its metadata by position.
func (e *DocxExtractor) Extract(ctx context.Context, path string) (*models.ExtractedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paras, err := ReadParagraphs(path)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, len(paras))
	for i, p := range paras {
		normalized[i] = strings.TrimSpace(textnorm.RemoveAccents(p))
	}

	titleIdx, err := e.find(normalized, 0, "title", func(p string) bool {
		return strings.HasPrefix(p, titleMarker)
	})
	if err != nil {
		return nil, err
	}

	dateIdx, err := e.find(normalized, titleIdx+1, "date line", func(p string) bool {
		return strings.HasPrefix(p, dateLinePrefix)
	})
	if err != nil {
		return nil, err
	}

	conceptIdx, err := e.find(normalized, dateIdx+1, "concept", func(p string) bool {
		return p != ""
	})
	if err != nil {
		return nil, err
	}

	resolutionDate, err := ParseDateLine(normalized[dateIdx])
	if err != nil {
		return nil, err
	}

	fullText := textnorm.JoinNonEmpty(paras)
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("%w: document has no text", ErrStructuralParse)
	}

	return &models.ExtractedRecord{
		Name:           models.StringPtr(normalized[titleIdx]),
		ResolutionDate: models.StringPtr(resolutionDate),
		Concept:        models.StringPtr(normalized[conceptIdx]),
		FullText:       fullText,
		ProcessDate:    e.opts.now().Format(models.DateLayout),
	}, nil
}

func (e *DocxExtractor) find(paras []string, from int, marker string, pred func(string) bool) (int, error) {
	idx, ok := findParagraph(paras, from, e.opts.MaxScanParagraphs, pred)
	if !ok {
		return 0, fmt.Errorf("%w: %s not found", ErrStructuralParse, marker)
	}

	return idx, nil
}

// findParagraph returns the index of the first paragraph at or after from
// satisfying pred, looking at no more than limit paragraphs (0 = no cap
// other than the document length).
func findParagraph(paras []string, from, limit int, pred func(string) bool) (int, bool) {
	end := len(paras)
	if limit > 0 && from+limit < end {
		end = from + limit
	}

	for i := from; i < end; i++ {
		if pred(paras[i]) {
			return i, true
		}
	}

	return 0, false
}
