// Package fingerprint assigns publications a stable content-derived
// identifier and collapses publications that share one.
package fingerprint

import (
	"strconv"
	"strings"

	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

// Rolling hash constants. Both are odd: mulConst scales the accumulator,
// xorConst spreads each character before it is folded in.
const (
	mulConst uint64 = 1000003
	xorConst uint64 = 16777619
	mask     uint64 = 0xFFFFFFFF
)

// Hash runs the 32-bit rolling hash over the characters of text.
// It is deterministic and order-sensitive but not cryptographic.
func Hash(text string) uint32 {
	var h uint64
	for _, c := range text {
		h = ((h * mulConst) ^ (uint64(c) * xorConst)) & mask
	}
	return uint32(h)
}

// Fingerprint concatenates the five identifying fields and renders their
// hash in decimal.
func Fingerprint(year, firstAuthor, title, issn, doi string) string {
	var b strings.Builder
	b.Grow(len(year) + len(firstAuthor) + len(title) + len(issn) + len(doi))
	b.WriteString(year)
	b.WriteString(firstAuthor)
	b.WriteString(title)
	b.WriteString(issn)
	b.WriteString(doi)
	return strconv.FormatUint(uint64(Hash(b.String())), 10)
}

// Of fingerprints a publication.
func Of(p reference.Publication) string {
	return Fingerprint(p.YearString(), p.FirstAuthor, p.Title, p.ISSN, p.DOI)
}
