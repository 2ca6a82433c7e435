// Package reference defines the publication-side domain types: the author
// rows extracted from bibliographic sources and the publication metadata used
// to fingerprint them.
package reference

import "strconv"

// Publication carries the bibliographic fields that identify a publication
// across repeated extractions.
type Publication struct {
	ID          string `json:"pub_id"`
	Year        int    `json:"year"`
	FirstAuthor string `json:"first_author"`
	Title       string `json:"title"`
	ISSN        string `json:"issn,omitempty"`
	DOI         string `json:"doi,omitempty"`
}

// YearString renders the year the way it appears in registry keys.
func (p Publication) YearString() string {
	return strconv.Itoa(p.Year)
}
