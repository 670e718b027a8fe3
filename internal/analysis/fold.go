package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and removes diacritics, so "Atención" and "atencion"
// compare equal. Fold is idempotent.
func Fold(s string) string {
	lower := strings.ToLower(s)
	if isASCII(lower) {
		return lower
	}

	// Lowercasing first matters: ToLower can itself emit combining marks
	// (e.g. "İ" → "i̇") which must be removed in the same pass.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
