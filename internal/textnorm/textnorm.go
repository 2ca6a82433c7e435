// Package textnorm standardizes free text (names, keys) so that values coming
// from different bibliographic sources and staff registries compare equal.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes, drops combining marks, and recomposes.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// punctuation maps typographic variants onto the ASCII form kept in names.
// Dots and commas carry no meaning in a surname and are dropped.
var punctuation = strings.NewReplacer(
	"\u2019", "'", // right single quotation mark
	"\u2018", "'",
	"\u00b4", "'", // acute accent used as apostrophe
	"`", "'",
	"\u2010", "-",
	"\u2011", "-", // non-breaking hyphen
	"\u2012", "-",
	"\u2013", "-", // en dash
	"\u2014", "-",
	".", "",
	",", " ",
	";", " ",
	"\u00a0", " ",
)

// StripDiacritics removes accents, keeping the base letters (É -> E).
func StripDiacritics(s string) string {
	result, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return result
}

// Standardize folds s to upper case, strips diacritics, normalizes
// punctuation, and collapses runs of whitespace to a single space.
func Standardize(s string) string {
	s = StripDiacritics(s)
	s = punctuation.Replace(s)
	s = strings.ToUpper(s)
	return strings.Join(strings.Fields(s), " ")
}
