package favorites

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeName lowercases a name and strips diacritics so that the
// favorites filter matches "Beyoncé" for the query "beyonce".
func normalizeName(s string) string {
	s = strings.ToLower(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return strings.TrimSpace(result)
}

// matchesFilter reports whether a favorite name matches the normalized query.
func matchesFilter(name, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return true
	}
	return strings.Contains(normalizeName(name), normalizedQuery)
}
