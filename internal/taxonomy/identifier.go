package taxonomy

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxIdentifierLength is the longest database name the stream store accepts.
const DefaultMaxIdentifierLength = 32

var (
	slugSeparators    = regexp.MustCompile(`[^a-z0-9\-]+`)
	invalidIdentifier = regexp.MustCompile(`[^a-z0-9_]+`)
)

// Slugify lowercases name, collapses every run of characters outside
// [a-z0-9-] into one underscore and strips a single trailing underscore.
//
//	Vehicle purchases (net outlay) -> vehicle_purchases_net_outlay
//	Alcohol & Tobacco              -> alcohol_tobacco
func Slugify(name string) string {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(name), "_")
	return strings.TrimSuffix(slug, "_")
}

// Alternation selects which character of each suffix pair survives a
// shortening step.
type Alternation string

const (
	// AlternationKeepFirst keeps the first character of the pair and drops
	// the second: a + bcdef -> ab + def.
	AlternationKeepFirst Alternation = "keep-first"
	// AlternationLegacy keeps the second character and drops the first,
	// matching identifiers that are already deployed: a + bcdef -> ac + def.
	AlternationLegacy Alternation = "legacy"
)

// ParseAlternation validates an alternation name from configuration.
func ParseAlternation(s string) (Alternation, error) {
	switch a := Alternation(strings.ToLower(strings.TrimSpace(s))); a {
	case "", AlternationKeepFirst:
		return AlternationKeepFirst, nil
	case AlternationLegacy:
		return a, nil
	}
	return "", fmt.Errorf("unknown alternation %q", s)
}

// Shortener bounds slugs to MaxLength characters.
type Shortener struct {
	MaxLength   int
	Alternation Alternation
}

// NewShortener returns a Shortener, falling back to the default length for
// values below 2 (a single-character cap cannot be reached by interleaving).
func NewShortener(maxLength int, alternation Alternation) Shortener {
	if maxLength < 2 {
		maxLength = DefaultMaxIdentifierLength
	}
	if alternation == "" {
		alternation = AlternationKeepFirst
	}
	return Shortener{MaxLength: maxLength, Alternation: alternation}
}

// Shorten returns the database-safe short identifier for slug: slugs over
// the cap are interleaved down to it, then every run of characters outside
// [a-z0-9_] becomes one underscore.
func (s Shortener) Shorten(slug string) string {
	return invalidIdentifier.ReplaceAllString(s.interleave(slug), "_")
}

// interleave repeats alternation passes until slug fits. The result is
// always a subsequence of slug that starts with its first character.
func (s Shortener) interleave(slug string) string {
	for len(slug) > s.MaxLength {
		slug = s.pass(slug)
	}
	return slug
}

// pass grows a prefix from the front of slug, moving one character of each
// suffix pair onto the prefix and dropping the other, until the total fits
// or the suffix runs out.
func (s Shortener) pass(slug string) string {
	prefix := []byte(slug[:1])
	suffix := slug[1:]
	for len(prefix)+len(suffix) > s.MaxLength && suffix != "" {
		pair := suffix[:min(2, len(suffix))]
		suffix = suffix[len(pair):]
		if s.Alternation == AlternationLegacy {
			prefix = append(prefix, pair[1:]...)
		} else {
			prefix = append(prefix, pair[0])
		}
	}
	return string(prefix) + suffix
}
