// Package identity canonicalizes display names into comparable join keys.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes to NFD, removes combining marks, and recomposes.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a free-text display name into the key used to join
// records across sources that share no stable identifier: accents stripped,
// whitespace trimmed, lowercased. Deterministic and pure; two display names
// denote the same identity iff their normalized keys are equal.
//
// Identifier equality always takes precedence over name equality when a
// stable identifier is available — names collide, identifiers don't.
func Normalize(name string) string {
	stripped, _, err := transform.String(stripAccents, name)
	if err != nil {
		// Malformed input passes through untransformed; trim and lower
		// still apply so the key stays deterministic.
		stripped = name
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}
