package tables

import (
	"strings"
	"unicode"
)

// NormalizeText lowercases s and turns every non-letter into a single space,
// padded on both ends so whole words can be found with a plain substring test.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// MatchKeyword returns the first keyword found as a whole word or phrase in
// the normalized text.
func MatchKeyword(normalized string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		needle := NormalizeText(kw)
		if strings.TrimSpace(needle) == "" {
			continue
		}
		if strings.Contains(normalized, needle) {
			return kw, true
		}
	}
	return "", false
}
