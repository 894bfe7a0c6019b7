package extractor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart  = "word/document.xml"
)

var errMissingDocumentPart = errors.New("missing " + documentPart)

// ReadParagraphs returns the text of every body-level paragraph of a docx
// file in document order. Paragraphs inside tables and text boxes are not
// body paragraphs and are skipped.
func ReadParagraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %w", ErrFormat, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrFormat, documentPart, err)
		}
		defer rc.Close()

		paras, err := parseDocumentXML(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrFormat, documentPart, err)
		}

		return paras, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrFormat, errMissingDocumentPart)
}

// parseDocumentXML walks the WordprocessingML token stream. Text inside
// w:t is kept, w:tab becomes a tab and w:br/w:cr a newline.
func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paras   []string
		current strings.Builder
		inText  bool
		// depth of w:p elements and of nested containers (tables, text boxes)
		paraDepth   int
		nestedDepth int
		sawBody     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}

			switch t.Name.Local {
			case "body":
				sawBody = true
			case "tbl", "txbxContent":
				nestedDepth++
			case "p":
				if nestedDepth == 0 {
					paraDepth++
					if paraDepth == 1 {
						current.Reset()
					}
				}
			case "t":
				inText = true
			case "tab":
				if bodyParagraph(paraDepth, nestedDepth) {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if bodyParagraph(paraDepth, nestedDepth) {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}

			switch t.Name.Local {
			case "tbl", "txbxContent":
				nestedDepth--
			case "p":
				if nestedDepth == 0 && paraDepth > 0 {
					paraDepth--
					if paraDepth == 0 {
						paras = append(paras, current.String())
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && bodyParagraph(paraDepth, nestedDepth) {
				current.Write(t)
			}
		}
	}

	if !sawBody {
		return nil, errors.New("document has no body")
	}

	return paras, nil
}

func bodyParagraph(paraDepth, nestedDepth int) bool {
	return paraDepth > 0 && nestedDepth == 0
}
