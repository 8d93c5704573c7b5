package gallery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName normalizes a display name for comparison: lowercase, no
// diacritics, dashes folded to spaces, surrounding whitespace trimmed.
func NormalizeName(name string) string {
	name = removeDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
