package match

import (
	"strings"
	"unicode"
)

// NormalizeName normalizes a task or column name for comparison.
// The normalization pipeline:
// 1. Case-fold to lower.
// 2. Drop every rune that is not a letter or digit.
func NormalizeName(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// LeadingToken returns the leading run of letters of an item id, lowercased.
// Examples:
//   - "ADS1" -> "ads"
//   - "bdi_01" -> "bdi"
//   - "1a" -> ""
func LeadingToken(id string) string {
	var b strings.Builder

	for _, r := range id {
		if !unicode.IsLetter(r) {
			break
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// SharesPrefix reports whether one normalized name is a prefix of the other.
// Empty names never share a prefix.
func SharesPrefix(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
