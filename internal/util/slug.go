// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	isbnNoise       = regexp.MustCompile(`[\s-]+`)
)

// Slugify converts a category name to a URL-safe slug.
//
//	"Science Fiction"  → "science-fiction"
//	"Café Culture"     → "cafe-culture"
//	"Sci-Fi/Fantasy"   → "sci-fi-fantasy"
//	"  --Poetry!-- "   → "poetry"
func Slugify(s string) string {
	// Decompose accents so "é" becomes "e" + combining mark, then drop the mark.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NormalizeISBN strips spaces and hyphens and uppercases a trailing X check digit.
//
//	"978-0-441-01359-3" → "9780441013593"
//	"0-8044-2957-x"     → "080442957X"
func NormalizeISBN(s string) string {
	return strings.ToUpper(isbnNoise.ReplaceAllString(strings.TrimSpace(s), ""))
}
