package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateLine(t *testing.T) {
	got, err := ParseDateLine("(19.JUN.2024)")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-19", got)
}

func TestParseDateLine_AllMonths(t *testing.T) {
	months := []struct {
		abbr string
		want string
	}{
		{"ENE", "01"}, {"FEB", "02"}, {"MAR", "03"}, {"ABR", "04"},
		{"MAY", "05"}, {"JUN", "06"}, {"JUL", "07"}, {"AGO", "08"},
		{"SEP", "09"}, {"OCT", "10"}, {"NOV", "11"}, {"DIC", "12"},
	}

	for _, m := range months {
		t.Run(m.abbr, func(t *testing.T) {
			got, err := ParseDateLine("(05." + m.abbr + ".2023)")
			require.NoError(t, err)
			assert.Equal(t, "2023-"+m.want+"-05", got)
		})
	}
}

func TestParseDateLine_Variants(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"  (1.ene.2024)  ", "2024-01-01"},
		{"(31.DIC.2023) ", "2023-12-31"},
		{"(09.Ago.2022)", "2022-08-09"},
		// English abbreviations pass through the table unchanged.
		{"(02.APR.2021)", "2021-04-02"},
	}

	for _, tt := range tests {
		got, err := ParseDateLine(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestParseDateLine_Invalid(t *testing.T) {
	for _, line := range []string{"", "()", "(19.JUN)", "(19.XYZ.2024)", "(32.ENE.2024)", "(19 junio 2024 extra)"} {
		_, err := ParseDateLine(line)
		assert.ErrorIs(t, err, ErrStructuralParse, line)
	}
}

func TestTranslateMonth(t *testing.T) {
	assert.Equal(t, "AUG", TranslateMonth("AGO"))
	assert.Equal(t, "DEC", TranslateMonth("dic"))
	assert.Equal(t, "XYZ", TranslateMonth("XYZ"))
}
