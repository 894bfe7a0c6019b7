package extractortest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// winAnsi maps the runes outside Latin-1 that resolutions use to their
// WinAnsiEncoding bytes.
var winAnsi = map[rune]byte{
	'‘': 0x91,
	'’': 0x92,
	'“': 0x93,
	'”': 0x94,
	'–': 0x96,
	'—': 0x97,
}

// WritePDF writes an uncompressed PDF with one page per argument. Lines of a
// page are separated by "\n" and rendered in Helvetica with WinAnsiEncoding.
func WritePDF(t testing.TB, path string, pages ...string) {
	t.Helper()

	if err := os.WriteFile(path, BuildPDF(pages...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// BuildPDF renders pages as PDF bytes.
func BuildPDF(pages ...string) []byte {
	// 1 catalog, 2 page tree, 3 font, then a page and content pair per page.
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		pageTree(len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	for i, page := range pages {
		content := contentStream(page)
		pageObj := 4 + 2*i

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer

	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()

	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)

	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func pageTree(n int) string {
	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	return fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)
}

func contentStream(page string) string {
	var b strings.Builder

	b.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")

	for i, line := range strings.Split(page, "\n") {
		if i > 0 {
			b.WriteString("T*\n")
		}

		fmt.Fprintf(&b, "(%s) Tj\n", pdfString(line))
	}

	b.WriteString("ET")

	return b.String()
}

// pdfString encodes s as the body of a literal string in WinAnsiEncoding.
func pdfString(s string) string {
	var b strings.Builder

	for _, r := range s {
		var c byte

		switch enc, ok := winAnsi[r]; {
		case ok:
			c = enc
		case r < 0x80 || (r >= 0xA0 && r <= 0xFF):
			c = byte(r)
		default:
			c = '?'
		}

		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n', '\r':
			b.WriteByte(' ')
		default:
			if c >= 0x80 {
				fmt.Fprintf(&b, "\\%03o", c)
			} else {
				b.WriteByte(c)
			}
		}
	}

	return b.String()
}
