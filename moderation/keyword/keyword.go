package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^\pL\pN]+`)

// Normalize lower-cases free-form text and folds away unicode combining
// marks, so that trigger phrases match accented or stylized variants.
//
// Whitespace and punctuation are preserved, since trigger phrases may span
// multiple words.
func Normalize(text string) string {
	// the transform chain is re-built per call to avoid sharing transformer state
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lower := strings.ToLower(text)
	folded, _, err := transform.String(normFunc, lower)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		return lower
	}
	return folded
}

// Slugify strips all non-letter, non-digit characters and lower-cases the
// rest. Useful for catching triggers obscured with punctuation (eg "s-c-a-m").
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}
