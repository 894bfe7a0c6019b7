package formatter

import (
	"strings"
	"testing"
	"time"

	"regdocs/internal/models"
)

func TestRenderTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:   "Basic table formatting",
			header: []string{"Header 1", "Header 2"},
			rows:   [][]string{{"val 1", "val 2"}},
			expected: `| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name:   "Minimum width",
			header: []string{"A", "B"},
			rows:   [][]string{{"1", "2"}},
			expected: `| A   | B   |
| --- | --- |
| 1   | 2   |
`,
		},
		{
			name:   "Trim and collapse whitespace",
			header: []string{"Col A", "Col B"},
			rows:   [][]string{{"  val\n A ", "val\tB"}},
			expected: `| Col A | Col B |
| ----- | ----- |
| val A | val B |
`,
		},
		{
			name:   "Ragged rows",
			header: []string{"H1"},
			rows:   [][]string{{"v1", "extra"}},
			expected: `| H1  |       |
| --- | ----- |
| v1  | extra |
`,
		},
		{
			name:   "Escape pipes",
			header: []string{"Cell"},
			rows:   [][]string{{"a|b"}},
			expected: `| Cell |
| ---- |
| a\|b |
`,
		},
		{
			name:   "Wide characters",
			header: []string{"名称", "Val"},
			rows:   [][]string{{"資源", "1"}, {"abcdef", "2"}},
			expected: `| 名称   | Val |
| ------ | --- |
| 資源   | 1   |
| abcdef | 2   |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderTable(tt.header, tt.rows)
			if got != tt.expected {
				t.Errorf("RenderTable() mismatch\nGot:\n%s\nExpected:\n%s", got, tt.expected)
			}
		})
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(nil, nil); got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Por la cual se adopta", 10); got != "Por la cu…" {
		t.Errorf("Truncate() = %q", got)
	}

	if got := Truncate("short", 0); got != "short" {
		t.Errorf("Truncate() with width 0 = %q", got)
	}
}

func TestRecordsTable(t *testing.T) {
	records := []models.ExtractedRecord{
		{
			Name:           models.StringPtr("RESOLUCION No. 000457 de 2024"),
			ResolutionDate: models.StringPtr("2024-06-19"),
			FullText:       "texto",
			ProcessDate:    "2024-07-01",
		},
	}

	out := RecordsTable(records, 0)

	if !strings.Contains(out, "| 1 ") {
		t.Errorf("Expected row number, got:\n%s", out)
	}

	if !strings.Contains(out, "RESOLUCION No. 000457 de 2024") {
		t.Errorf("Expected name, got:\n%s", out)
	}

	if !strings.Contains(out, "| -  ") && !strings.Contains(out, "| -       ") {
		t.Errorf("Expected null concept placeholder, got:\n%s", out)
	}

	if !strings.Contains(out, "5 chars") {
		t.Errorf("Expected text length, got:\n%s", out)
	}
}

func TestReportsTable(t *testing.T) {
	start := time.Date(2024, 6, 19, 10, 0, 0, 0, time.UTC)
	reports := []models.RunReport{
		{Source: "creg", Status: models.StatusSuccess, Discovered: 5, Downloaded: 5, Extracted: 3, Quarantined: 2,
			StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond), BatchPath: "data/creg/processed/resolutions_processed.json"},
		{Source: "upme", Status: models.StatusEmptyDiscovery, StartedAt: start, FinishedAt: start},
	}

	out := ReportsTable(reports)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d:\n%s", len(lines), out)
	}

	if !strings.Contains(lines[2], "✅ success") || !strings.Contains(lines[2], "1.5s") {
		t.Errorf("Unexpected creg row: %s", lines[2])
	}

	if !strings.Contains(lines[3], "empty_discovery") {
		t.Errorf("Unexpected upme row: %s", lines[3])
	}
}
