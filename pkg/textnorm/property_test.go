package textnorm

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRemoveAccentsProperties checks idempotence and that no nonspacing
// mark survives normalization.
func TestRemoveAccentsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("RemoveAccents is idempotent", prop.ForAll(
		func(s string) bool {
			once := RemoveAccents(s)

			return RemoveAccents(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("RemoveAccents is idempotent on accented latin text", prop.ForAll(
		func(base string, marks []rune) bool {
			in := base
			for _, m := range marks {
				in += string(m)
			}

			once := RemoveAccents(in)

			return RemoveAccents(once) == once
		},
		gen.AlphaString(),
		gen.SliceOf(gen.RuneRange('\u0300', '\u036f')),
	))

	properties.Property("combining marks never survive", prop.ForAll(
		func(base string, marks []rune) bool {
			in := base
			for _, m := range marks {
				in += string(m)
			}

			for _, r := range RemoveAccents(in) {
				if r >= '\u0300' && r <= '\u036f' {
					return false
				}
			}

			return true
		},
		gen.AlphaString(),
		gen.SliceOf(gen.RuneRange('\u0300', '\u036f')),
	))

	properties.TestingRun(t)
}
