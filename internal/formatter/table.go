// Package formatter renders records and run reports as aligned markdown tables.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"regdocs/internal/models"
	"regdocs/pkg/textnorm"
)

const (
	minColumnWidth = 3
	ellipsis       = "…"
	nullCell       = "-"
)

// RenderTable renders a markdown table whose columns are padded to the
// display width of their widest cell, so wide runes stay aligned.
func RenderTable(header []string, rows [][]string) string {
	colCount := len(header)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return ""
	}

	table := make([][]string, 0, len(rows)+1)
	table = append(table, cleanRow(header))

	for _, row := range rows {
		table = append(table, cleanRow(row))
	}

	// Calculate max widths (using display width)
	colWidths := make([]int, colCount)
	for i := range colWidths {
		colWidths[i] = minColumnWidth
	}

	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(table)+1)
	lines = append(lines, renderRow(table[0], colWidths))
	lines = append(lines, renderSeparator(colWidths))

	for _, row := range table[1:] {
		lines = append(lines, renderRow(row, colWidths))
	}

	return strings.Join(lines, "\n") + "\n"
}

func cleanRow(row []string) []string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = strings.ReplaceAll(textnorm.NormalizeWhitespace(c), "|", `\|`)
	}

	return cells
}

func renderRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		// Pad with spaces based on display width
		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

func renderSeparator(colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for _, width := range colWidths {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", width))
		sb.WriteString(" |")
	}

	return sb.String()
}

// Truncate shortens s to at most width display cells, marking the cut.
// width 0 leaves s untouched.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}

	return runewidth.Truncate(s, width, ellipsis)
}

// RecordsTable lists batch records. Long names and concepts are truncated
// to maxWidth display cells.
func RecordsTable(records []models.ExtractedRecord, maxWidth int) string {
	header := []string{"#", "Name", "Date", "Concept", "Processed", "Text"}
	rows := make([][]string, 0, len(records))

	for i, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			Truncate(orNull(r.Name), maxWidth),
			orNull(r.ResolutionDate),
			Truncate(orNull(r.Concept), maxWidth),
			r.ProcessDate,
			fmt.Sprintf("%d chars", len([]rune(r.FullText))),
		})
	}

	return RenderTable(header, rows)
}

// ReportsTable lists run reports.
func ReportsTable(reports []models.RunReport) string {
	header := []string{"Source", "Status", "Discovered", "Downloaded", "Extracted", "Quarantined", "Duration", "Batch"}
	rows := make([][]string, 0, len(reports))

	for _, r := range reports {
		batch := r.BatchPath
		if batch == "" {
			batch = nullCell
		}

		rows = append(rows, []string{
			r.Source,
			statusEmoji(r.Status) + " " + string(r.Status),
			strconv.Itoa(r.Discovered),
			strconv.Itoa(r.Downloaded),
			strconv.Itoa(r.Extracted),
			strconv.Itoa(r.Quarantined),
			fmt.Sprintf("%.1fs", r.Duration().Seconds()),
			batch,
		})
	}

	return RenderTable(header, rows)
}

func statusEmoji(s models.RunStatus) string {
	switch s {
	case models.StatusSuccess:
		return "✅"
	case models.StatusEmptyDiscovery, models.StatusEmptyBatch:
		return "⚠️"
	default:
		return "❌"
	}
}

func orNull(s *string) string {
	if s == nil {
		return nullCell
	}

	return *s
}
