package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxFilenameRunes = 60

// SafeFilename derives a filesystem-safe name from a media title. The title
// is NFKC-normalized, stripped to letters, digits, spaces, hyphens and
// underscores, and capped at 60 runes. An empty result falls back to
// "download".
func SafeFilename(title string) string {
	title = norm.NFKC.String(title)

	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	safe := strings.TrimSpace(b.String())
	if runes := []rune(safe); len(runes) > maxFilenameRunes {
		safe = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}
	if safe == "" {
		return "download"
	}
	return safe
}
