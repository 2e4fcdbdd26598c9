package utils

import (
	"strings"
	"unicode"
)

// SanitizeFilename keeps letters, digits, spaces, dashes and
// underscores, dropping everything else. Trailing spaces are trimmed so
// the result is safe as a file name on all platforms.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
