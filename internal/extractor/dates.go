package extractor

import (
	"fmt"
	"strings"
	"time"

	"regdocs/internal/models"
)

const englishDateLayout = "2 Jan 2006"

// spanishMonths maps Spanish three-letter month abbreviations to the
// English ones understood by time.Parse.
var spanishMonths = map[string]string{
	"ENE": "JAN",
	"FEB": "FEB",
	"MAR": "MAR",
	"ABR": "APR",
	"MAY": "MAY",
	"JUN": "JUN",
	"JUL": "JUL",
	"AGO": "AUG",
	"SEP": "SEP",
	"OCT": "OCT",
	"NOV": "NOV",
	"DIC": "DEC",
}

// TranslateMonth returns the English abbreviation for a Spanish one.
// Unknown abbreviations are returned unchanged.
func TranslateMonth(abbr string) string {
	if en, ok := spanishMonths[strings.ToUpper(abbr)]; ok {
		return en
	}

	return abbr
}

// ParseDateLine converts a docx date line such as "(19.JUN.2024)" to
// "2024-06-19".
func ParseDateLine(line string) (string, error) {
	raw := strings.TrimSpace(line)
	raw = strings.TrimPrefix(raw, "(")
	if i := strings.Index(raw, ")"); i >= 0 {
		raw = raw[:i]
	}

	fields := strings.Fields(strings.ReplaceAll(raw, ".", " "))
	if len(fields) != 3 {
		return "", fmt.Errorf("%w: date line %q is not DD.MMM.YYYY", ErrStructuralParse, line)
	}

	value := fields[0] + " " + TranslateMonth(fields[1]) + " " + fields[2]

	t, err := time.Parse(englishDateLayout, value)
	if err != nil {
		return "", fmt.Errorf("%w: date line %q: %w", ErrStructuralParse, line, err)
	}

	return t.Format(models.DateLayout), nil
}
