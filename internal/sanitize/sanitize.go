// Package sanitize normalises names into the identifiers stored by the
// organisation directory: URL slugs for companies, departments and job roles,
// and keys for access roles and capabilities.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonKeyChars = regexp.MustCompile(`[^a-z0-9_\-]`)

// Slug turns a display name into a lowercase, hyphenated identifier.
// An empty or all-punctuation input yields "".
func Slug(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

// Key lowercases s and drops every character outside [a-z0-9_-].
func Key(s string) string {
	return nonKeyChars.ReplaceAllString(strings.ToLower(s), "")
}

// Humanize renders a key such as "sales_rep" as "Sales Rep".
func Humanize(key string) string {
	words := strings.ReplaceAll(key, "_", " ")
	return cases.Title(language.Und, cases.NoLower).String(words)
}
