package spendscore

import (
	"strings"
	"unicode"
)

// NormalizeDescription reduces a vendor description to a grouping key: lower-cased, digits
// and punctuation removed, truncated to its first three words.
//
//	NormalizeDescription("NETFLIX.COM 866-579-7172 CA") == "netflixcom ca"
func NormalizeDescription(description string) string {
	lowered := strings.ToLower(description)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsDigit(r):
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_', unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	if len(words) > DescriptionKeyTokens {
		words = words[:DescriptionKeyTokens]
	}
	return strings.Join(words, " ")
}
