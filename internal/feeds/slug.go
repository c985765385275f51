package feeds

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// accentStripper decomposes accented characters, drops the combining
	// marks, and recomposes what remains.
	accentStripper = transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)

	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Slug derives a stable filename fragment from a show title: accents
// stripped, lowercased, runs of anything non-alphanumeric collapsed to a
// single hyphen.
func Slug(title string) string {
	normalized, _, err := transform.String(accentStripper, title)
	if err != nil {
		normalized = title
	}
	slug := strings.ToLower(normalized)
	slug = nonSlugRunes.ReplaceAllString(slug, "-")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
