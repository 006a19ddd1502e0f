// Package util provides string helpers shared by the tag input, forms and the mock backend.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeRe     = regexp.MustCompile(`[^a-z0-9-]+`)
	dashesRe     = regexp.MustCompile(`-+`)
)

// Slugify converts a tag name to a URL-safe fragment for temporary IDs.
//
//	"Dev Ops"  -> "dev-ops"
//	"Café Tips" -> "cafe-tips"
//	"  Go!  "  -> "go"
func Slugify(s string) string {
	s = norm.NFKD.String(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = unsafeRe.ReplaceAllString(s, "")
	s = dashesRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
