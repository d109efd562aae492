package export

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeRunRe   = regexp.MustCompile(`[^A-Za-z0-9\-_]+`)
	quotesRe      = regexp.MustCompile("[\"'’‘“”`]+")
	separatorsRe  = regexp.MustCompile(`[\s\p{Pd}_]+`)
	nonSlugRe     = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRunRe   = regexp.MustCompile(`-+`)
	docxUnsafeRe  = regexp.MustCompile(`(?i)[^a-z0-9\-_]+`)
	defaultSlug   = "untitled"
	defaultDocxFn = "session"
)

// SanitizeFilename replaces every run of characters outside [A-Za-z0-9-_]
// with a single underscore and trims underscores from both ends.
func SanitizeFilename(s string) string {
	return strings.Trim(unsafeRunRe.ReplaceAllString(s, "_"), "_")
}

// SanitizeFilenameFriendly produces a lowercase hyphenated slug for
// user-facing downloads: "Quick‑win’s current draft" becomes
// "quick-wins-current-draft".
func SanitizeFilenameFriendly(s string) string {
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	normalized, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		return defaultSlug
	}

	slug := quotesRe.ReplaceAllString(normalized, "")
	slug = separatorsRe.ReplaceAllString(slug, "-")
	slug = nonSlugRe.ReplaceAllString(slug, "-")
	slug = hyphenRunRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return defaultSlug
	}
	return slug
}

// DocxFilename returns the attachment name of a Word export.
func DocxFilename(title string) string {
	safe := docxUnsafeRe.ReplaceAllString(title, "_")
	if safe == "" {
		safe = defaultDocxFn
	}
	return safe + ".docx"
}
