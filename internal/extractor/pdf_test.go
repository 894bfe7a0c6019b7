package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdocs/internal/config"
	"regdocs/internal/extractor/extractortest"
	"regdocs/internal/models"
)

type fakePages struct {
	pages []string
	err   error
}

func (f fakePages) ReadPages(string) ([]string, error) {
	return f.pages, f.err
}

func TestPDFExtractor_Extract(t *testing.T) {
	pages := fakePages{pages: []string{
		"MINISTERIO DE MINAS Y ENERGÍA\nUNIDAD DE PLANEACIÓN MINERO ENERGÉTICA\nRESOLUCIÓN No. 000457 de 2024\n( 19-06-2024 )",
		"",
		"“Por la cual se adopta la metodología de cálculo”\nEL DIRECTOR GENERAL",
	}}

	ex := NewPDFExtractorWithReader(Options{Clock: fixedClock}, pages)

	rec, err := ex.Extract(context.Background(), "ignored.pdf")
	require.NoError(t, err)

	assert.Equal(t, "RESOLUCION No. 000457 de 2024", models.Deref(rec.Name))
	assert.Equal(t, "2024-06-19", models.Deref(rec.ResolutionDate))
	assert.Equal(t, "Por la cual se adopta la metodologia de calculo", models.Deref(rec.Concept))
	assert.Equal(t, "2024-07-01", rec.ProcessDate)
	assert.NotContains(t, rec.FullText, "\n\n", "empty pages are dropped")
}

func TestExtractMetadata_NullTolerant(t *testing.T) {
	rec := ExtractMetadata("RESOLUCION No. 12 de 2023 sin fecha ni concepto entre comillas")

	require.NotNil(t, rec.Name)
	assert.Equal(t, "RESOLUCION No. 12 de 2023", *rec.Name)
	assert.Nil(t, rec.ResolutionDate)
	assert.Nil(t, rec.Concept)
}

func TestExtractMetadata_BlankQuotedConcept(t *testing.T) {
	rec := ExtractMetadata("RESOLUCION No. 457 de 2024 “ ” se adopta")

	assert.Equal(t, "RESOLUCION No. 457 de 2024", models.Deref(rec.Name))
	assert.Nil(t, rec.Concept)

	rec = ExtractMetadata("“ ” y luego “Por la cual se adopta”")
	assert.Equal(t, "Por la cual se adopta", models.Deref(rec.Concept))
}

func TestExtractMetadata_CaseInsensitiveName(t *testing.T) {
	rec := ExtractMetadata("la resolucion no. 9 de 2022")
	assert.Equal(t, "resolucion no. 9 de 2022", models.Deref(rec.Name))
}

func TestExtractMetadata_SkipsImpossibleDates(t *testing.T) {
	rec := ExtractMetadata("radicado 99-99-2024, expedida el 01-02-2024")
	assert.Equal(t, "2024-02-01", models.Deref(rec.ResolutionDate))

	rec = ExtractMetadata("radicado 99-99-2024")
	assert.Nil(t, rec.ResolutionDate)
}

func TestPDFExtractor_NullFieldsStillSucceed(t *testing.T) {
	ex := NewPDFExtractorWithReader(Options{}, fakePages{pages: []string{"Texto sin metadatos"}})

	rec, err := ex.Extract(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Nil(t, rec.Name)
	assert.Nil(t, rec.ResolutionDate)
	assert.Nil(t, rec.Concept)
	assert.Equal(t, "Texto sin metadatos", rec.FullText)
}

func TestPDFExtractor_NoText(t *testing.T) {
	ex := NewPDFExtractorWithReader(Options{}, fakePages{pages: []string{"", "  "}})

	_, err := ex.Extract(context.Background(), "x.pdf")
	require.ErrorIs(t, err, ErrStructuralParse)
}

func TestPDFExtractor_ReaderError(t *testing.T) {
	ex := NewPDFExtractorWithReader(Options{}, fakePages{err: errors.New("boom")})

	_, err := ex.Extract(context.Background(), "x.pdf")
	require.Error(t, err)
}

func TestLedongthucReader_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("<html>not a pdf</html>"), 0o644))

	_, err := LedongthucReader{}.ReadPages(path)
	require.ErrorIs(t, err, ErrFormat)
}

func TestLedongthucReader_ReadsPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res.pdf")
	extractortest.WritePDF(t, path,
		"UNIDAD DE PLANEACIÓN MINERO ENERGÉTICA\nRESOLUCIÓN No. 000457 de 2024\n19-06-2024",
		"“Por la cual se adopta la metodología (versión 2)”\nEL DIRECTOR GENERAL",
	)

	pages, err := LedongthucReader{}.ReadPages(path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "RESOLUCIÓN No. 000457 de 2024")
	assert.Contains(t, pages[1], "“Por la cual se adopta la metodología (versión 2)”")

	rec, err := NewPDFExtractor(Options{Clock: fixedClock}).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "RESOLUCION No. 000457 de 2024", models.Deref(rec.Name))
	assert.Equal(t, "2024-06-19", models.Deref(rec.ResolutionDate))
	assert.Equal(t, "Por la cual se adopta la metodologia (version 2)", models.Deref(rec.Concept))
	assert.Contains(t, rec.FullText, "UNIDAD DE PLANEACION MINERO ENERGETICA")
	assert.Contains(t, rec.FullText, "EL DIRECTOR GENERAL")
}

func TestForFormat(t *testing.T) {
	ex, err := ForFormat(config.FormatDocx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &DocxExtractor{}, ex)

	ex, err = ForFormat(config.FormatPDF, Options{})
	require.NoError(t, err)
	assert.IsType(t, &PDFExtractor{}, ex)

	_, err = ForFormat("odt", Options{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFExtractorWithReader(Options{}, fakePages{pages: []string{"x"}}).Extract(ctx, "x.pdf")
	require.ErrorIs(t, err, context.Canceled)
}
