package tag

import (
	stderrors "errors"
	"regexp"
	"strings"
)

// Default bounds of a normalized tag name, inclusive.
const (
	MinLength = 2
	MaxLength = 59
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

	ErrInvalidTag = stderrors.New("tag must be between 2 and 59 characters after normalization")
)

// Normalize slugs raw with the default length bounds.
func Normalize(raw string) (string, error) {
	return NormalizeWithin(raw, MinLength, MaxLength)
}

// NormalizeWithin lowercases and trims raw, joins whitespace runs with a
// single hyphen, drops anything outside [a-zA-Z0-9-_] and rejects results
// whose length falls outside [min, max].
func NormalizeWithin(raw string, min, max int) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = reWhitespace.ReplaceAllString(name, "-")
	name = reDisallowed.ReplaceAllString(name, "")
	if len(name) < min || len(name) > max {
		return "", ErrInvalidTag
	}
	return name, nil
}
