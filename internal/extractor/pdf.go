package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"regdocs/internal/models"
	"regdocs/pkg/textnorm"
)

const pdfDateLayout = "02-01-2006"

var (
	resolutionPattern = regexp.MustCompile(`(?i)RESOLUCI[OÓ]N\s+No\.\s+\d+\s+de\s+\d{4}`)
	pdfDatePattern    = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
	conceptPattern    = regexp.MustCompile(`“([^”]+)”`)
)

// PageReader returns the plain text of every page of a PDF, in order.
type PageReader interface {
	ReadPages(path string) ([]string, error)
}

// LedongthucReader reads pages with github.com/ledongthuc/pdf.
type LedongthucReader struct{}

// ReadPages implements PageReader.
func (LedongthucReader) ReadPages(path string) (pages []string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: malformed pdf: %v", ErrFormat, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrFormat, err)
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([]string, 0, total)

	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")

			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrFormat, i, err)
		}

		pages = append(pages, text)
	}

	return pages, nil
}

// PDFExtractor reads UPME resolutions. It is tolerant: metadata that does
// not match is left nil.
type PDFExtractor struct {
	opts  Options
	pages PageReader
}

// NewPDFExtractor creates a PDF extractor backed by LedongthucReader.
func NewPDFExtractor(opts Options) *PDFExtractor {
	return NewPDFExtractorWithReader(opts, LedongthucReader{})
}

// NewPDFExtractorWithReader creates a PDF extractor with a custom page reader.
func NewPDFExtractorWithReader(opts Options, pages PageReader) *PDFExtractor {
	return &PDFExtractor{opts: opts, pages: pages}
}

// Extract reads every page of the PDF and recovers metadata by pattern.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (*models.ExtractedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := e.pages.ReadPages(path)
	if err != nil {
		return nil, err
	}

	fullText := textnorm.JoinNonEmpty(pages)
	if strings.TrimSpace(fullText) == "" {
		return nil, fmt.Errorf("%w: pdf has no extractable text", ErrStructuralParse)
	}

	record := ExtractMetadata(fullText)
	record.FullText = fullText
	record.ProcessDate = e.opts.now().Format(models.DateLayout)

	return record, nil
}

// ExtractMetadata recovers name, resolution date and concept from
// normalized PDF text. Fields that do not match stay nil; blank quoted
// spans are skipped.
func ExtractMetadata(text string) *models.ExtractedRecord {
	record := &models.ExtractedRecord{}

	if m := resolutionPattern.FindString(text); m != "" {
		record.Name = models.StringPtr(textnorm.RemoveAccents(m))
	}

	for _, m := range pdfDatePattern.FindAllString(text, -1) {
		if t, err := time.Parse(pdfDateLayout, m); err == nil {
			record.ResolutionDate = models.StringPtr(t.Format(models.DateLayout))

			break
		}
	}

	for _, m := range conceptPattern.FindAllStringSubmatch(text, -1) {
		if strings.TrimSpace(m[1]) != "" {
			record.Concept = models.StringPtr(textnorm.RemoveAccents(m[1]))

			break
		}
	}

	return record
}
