// Package textnorm provides the text normalization shared by every source adapter.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// newAccentStripper builds the decompose, strip, recompose chain.
// transform.Chain keeps internal state, so every call gets its own.
func newAccentStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// RemoveAccents removes every combining diacritical mark from text.
// Precomposed letters are decomposed first, so "RESOLUCIÓN" becomes
// "RESOLUCION"; all other characters come back unchanged.
// The function never fails and RemoveAccents(RemoveAccents(x)) == RemoveAccents(x).
func RemoveAccents(text string) string {
	if text == "" {
		return text
	}

	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	out, _, err := transform.String(newAccentStripper(), text)
	if err != nil {
		return text
	}

	return out
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// JoinNonEmpty normalizes each unit, drops the empty ones and joins the
// rest with newlines. Whitespace-only units are kept as is.
func JoinNonEmpty(units []string) string {
	kept := make([]string, 0, len(units))

	for _, u := range units {
		n := RemoveAccents(u)
		if n == "" {
			continue
		}

		kept = append(kept, n)
	}

	return strings.Join(kept, "\n")
}
