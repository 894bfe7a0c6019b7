// Package main provides the extract command that runs one extractor over a
// single local file and prints the resulting record.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"regdocs/internal/batch"
	"regdocs/internal/extractor"
	"regdocs/internal/models"
	"regdocs/internal/normalizer"
)

func main() {
	file := flag.String("file", "", "Path to a .docx or .pdf resolution (required)")
	format := flag.String("format", "", "Document format: docx or pdf (default: from the file extension)")
	maxScan := flag.Int("max-scan", 0, "Maximum paragraphs scanned per docx marker (0 = whole document)")
	flag.Parse()

	if *file == "" {
		fmt.Println("Usage: ./bin/extract -file <path> [-format docx|pdf] [-max-scan N]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *format == "" {
		*format = strings.TrimPrefix(strings.ToLower(filepath.Ext(*file)), ".")
	}

	ex, err := extractor.ForFormat(*format, extractor.Options{MaxScanParagraphs: *maxScan})
	if err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	rec, err := ex.Extract(context.Background(), *file)
	if err != nil {
		log.Fatalf("❌ Extraction failed: %v\n", err)
	}

	if err := normalizer.NewValidator().Validate(rec); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Record would be quarantined: %v\n", err)
	}

	out, err := batch.Encode([]models.ExtractedRecord{*rec})
	if err != nil {
		log.Fatalf("❌ Failed to encode record: %v\n", err)
	}

	fmt.Println(string(out))
}
