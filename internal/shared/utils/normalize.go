package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticsRemover = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeText produces the canonical form used for catalog matching:
// diacritics stripped, everything except letters and spaces removed,
// whitespace collapsed, uppercased. The result is idempotent, so stored
// values compare equal to re-normalized input.
func NormalizeText(input string) string {
	stripped, _, err := transform.String(diacriticsRemover, input)
	if err != nil {
		stripped = input
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	collapsed := strings.Join(strings.Fields(b.String()), " ")
	return strings.ToUpper(collapsed)
}
