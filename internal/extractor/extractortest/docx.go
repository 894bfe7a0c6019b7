// Package extractortest builds document fixtures for tests.
package extractortest

import (
	"archive/zip"
	"encoding/xml"
	"os"
	"strings"
	"testing"
)

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooter = `<w:sectPr/></w:body></w:document>`

// DocumentXML renders paragraphs as a minimal word/document.xml.
func DocumentXML(paragraphs ...string) string {
	var b strings.Builder

	b.WriteString(documentHeader)

	for _, p := range paragraphs {
		b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		xml.EscapeText(&b, []byte(p))
		b.WriteString(`</w:t></w:r></w:p>`)
	}

	b.WriteString(documentFooter)

	return b.String()
}

// WriteDocx writes a docx with one body paragraph per argument.
func WriteDocx(t testing.TB, path string, paragraphs ...string) {
	t.Helper()

	WriteDocxXML(t, path, DocumentXML(paragraphs...))
}

// WriteDocxXML writes a docx whose word/document.xml is documentXML.
func WriteDocxXML(t testing.TB, path, documentXML string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	w, err := zw.Create("[Content_Types].xml")
	if err != nil {
		t.Fatalf("zip: %v", err)
	}

	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))

	w, err = zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip: %v", err)
	}

	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

// Resolution returns the paragraphs of a well-formed CREG resolution.
func Resolution(number, dateLine, concept string) []string {
	return []string{
		"Ministerio de Minas y Energía",
		"",
		"RESOLUCIÓN No. " + number,
		"",
		dateLine,
		"   ",
		concept,
		"LA COMISIÓN DE REGULACIÓN DE ENERGÍA Y GAS",
		"RESUELVE:",
	}
}
