// Package category provides book category normalization and slugging.
package category

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a category name to a URL-safe slug.
// "Science Fiction" -> "science-fiction".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Lowercase.
	s = strings.ToLower(s)

	// Replace non-alphanumeric with hyphens.
	s = nonAlphanumeric.ReplaceAllString(s, "-")

	// Collapse multiple hyphens.
	s = multipleHyphens.ReplaceAllString(s, "-")

	// Trim leading/trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}

// canonicalAliases maps common shorthand slugs to the canonical one.
var canonicalAliases = map[string]string{
	"sci-fi":          "science-fiction",
	"scifi":           "science-fiction",
	"sf":              "science-fiction",
	"ya":              "young-adult",
	"teen":            "young-adult",
	"suspense":        "thriller",
	"selfhelp":        "self-help",
	"bio":             "biography",
	"memoir":          "biography",
	"nonfiction":      "non-fiction",
	"literature":      "fiction",
	"detective":       "mystery",
	"scary":           "horror",
	"how-to":          "self-help",
	"tech":            "technology",
	"computers":       "technology",
	"cooking":         "food-drink",
	"cookbooks":       "food-drink",
	"kids":            "children",
	"graphic-novels":  "comics",
	"manga":           "comics",
	"true-crime":      "crime",
	"historical":      "history",
	"autobiography":   "biography",
	"short-stories":   "fiction",
	"chick-lit":       "romance",
	"romantic-comedy": "romance",
}

// CanonicalSlug slugifies a raw category and resolves known aliases.
// "Sci-Fi" -> "science-fiction", "YA" -> "young-adult".
func CanonicalSlug(raw string) string {
	slug := Slugify(raw)
	if canonical, ok := canonicalAliases[slug]; ok {
		return canonical
	}
	return slug
}
