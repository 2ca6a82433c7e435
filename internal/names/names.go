// Package names turns raw author display names into the (last name,
// first-name initials) pairs used as matching keys.
//
// Display names arrive as space-separated tokens: the last name token(s)
// followed by a final first-name token, e.g. "VAN DER BERG J-P".
package names

import (
	"strings"
	"unicode/utf8"

	"github.com/TickyWill/BiblioMeter-sub001/internal/textnorm"
)

// DefaultMinHyphenTokenLength is the length under which a hyphenated
// last-name token is treated as part of the first name.
const DefaultMinHyphenTokenLength = 4

// Name is a normalized author or staff name.
type Name struct {
	Last     string // standardized last name, may be empty
	Initials string // contiguous first-name initials, e.g. "JP"
}

// Key returns the full-name key: last name, a space, and the initials.
func (n Name) Key() string {
	return FullNameKey(n.Last, n.Initials)
}

// IsMalformed reports whether the name can never match (empty last name).
func (n Name) IsMalformed() bool {
	return n.Last == ""
}

// Normalizer splits display names. The zero value uses
// DefaultMinHyphenTokenLength.
type Normalizer struct {
	MinHyphenTokenLength int
}

// New returns a Normalizer with the given threshold; values < 1 select the default.
func New(minHyphenTokenLength int) Normalizer {
	if minHyphenTokenLength < 1 {
		minHyphenTokenLength = DefaultMinHyphenTokenLength
	}
	return Normalizer{MinHyphenTokenLength: minHyphenTokenLength}
}

// Split normalizes a raw display name.
//
// The last token is the first-name token. Preceding tokens form the last
// name, except hyphenated tokens shorter than MinHyphenTokenLength, which are
// moved in front of the first-name token ("MARTIN J- P" -> MARTIN, JP).
// A single-token name yields an empty last name.
func (n Normalizer) Split(raw string) Name {
	minLen := n.MinHyphenTokenLength
	if minLen < 1 {
		minLen = DefaultMinHyphenTokenLength
	}

	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Name{}
	}

	first := tokens[len(tokens)-1]
	var lastTokens, moved []string
	for _, tok := range tokens[:len(tokens)-1] {
		if utf8.RuneCountInString(tok) < minLen && strings.Contains(tok, "-") {
			moved = append(moved, tok)
			continue
		}
		lastTokens = append(lastTokens, tok)
	}

	return Name{
		Last:     LastName(strings.Join(lastTokens, " ")),
		Initials: Initials(strings.Join(append(moved, first), " ")),
	}
}

// LastName standardizes a last name.
func LastName(s string) string {
	return textnorm.Standardize(s)
}

// Initials canonicalizes a first-name token into contiguous initials:
// hyphens become spaces and all whitespace is removed.
func Initials(s string) string {
	s = textnorm.Standardize(s)
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), "")
}

// FullNameKey builds the "LAST INITIALS" key used across registries and
// correction tables.
func FullNameKey(last, initials string) string {
	return last + " " + initials
}
