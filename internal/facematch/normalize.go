package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Adébáyọ̀" -> "Adebayo").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeStaffName normalizes a staff name for search: lowercase, no diacritics,
// dashes and dots become spaces, runs of whitespace collapse to one space.
func NormalizeStaffName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.NewReplacer("-", " ", ".", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// NameMatchesQuery reports whether every word of query appears in name.
// Both sides are normalized, so "oluwaseun ade" matches "Adé, Oluwaṣeun".
func NameMatchesQuery(name, query string) bool {
	words := strings.Fields(NormalizeStaffName(query))
	if len(words) == 0 {
		return true
	}
	normalized := NormalizeStaffName(strings.ReplaceAll(name, ",", " "))
	for _, w := range words {
		if !strings.Contains(normalized, w) {
			return false
		}
	}
	return true
}
