package fingerprint

import (
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

// Entry maps a kept publication to its fingerprint.
type Entry struct {
	PubID       string `json:"pub_id"`
	Fingerprint string `json:"fingerprint"`
}

// Group is a set of publications sharing a fingerprint.
type Group struct {
	Fingerprint string   `json:"fingerprint"`
	Primary     string   `json:"primary"`    // first publication ID seen, kept
	Duplicates  []string `json:"duplicates"` // dropped publication IDs
}

// Index is the post-dedup fingerprint table.
type Index struct {
	Entries []Entry
	Groups  []Group
	dropped map[string]string // duplicate pub ID -> primary pub ID
	byPub   map[string]string // kept pub ID -> fingerprint
}

// Deduplicate fingerprints publications in order. The first publication ID
// seen for a fingerprint wins; later IDs with the same fingerprint are
// recorded as duplicates. Repeated IDs are ignored.
func Deduplicate(pubs []reference.Publication) *Index {
	ix := &Index{
		dropped: make(map[string]string),
		byPub:   make(map[string]string),
	}
	groupOf := make(map[string]int) // fingerprint -> index in Groups
	seenID := make(map[string]bool)
	primaryOf := make(map[string]string) // fingerprint -> primary pub ID

	for _, p := range pubs {
		if seenID[p.ID] {
			continue
		}
		seenID[p.ID] = true

		fp := Of(p)
		primary, exists := primaryOf[fp]
		if !exists {
			primaryOf[fp] = p.ID
			ix.byPub[p.ID] = fp
			ix.Entries = append(ix.Entries, Entry{PubID: p.ID, Fingerprint: fp})
			continue
		}

		ix.dropped[p.ID] = primary
		gi, ok := groupOf[fp]
		if !ok {
			gi = len(ix.Groups)
			groupOf[fp] = gi
			ix.Groups = append(ix.Groups, Group{Fingerprint: fp, Primary: primary})
		}
		ix.Groups[gi].Duplicates = append(ix.Groups[gi].Duplicates, p.ID)
	}
	return ix
}

// Dropped reports whether pubID was removed as a duplicate, and of which
// publication.
func (ix *Index) Dropped(pubID string) (string, bool) {
	primary, ok := ix.dropped[pubID]
	return primary, ok
}

// Fingerprint returns the fingerprint of a kept publication.
func (ix *Index) Fingerprint(pubID string) (string, bool) {
	fp, ok := ix.byPub[pubID]
	return fp, ok
}

// DuplicateCount returns the number of dropped publications.
func (ix *Index) DuplicateCount() int {
	return len(ix.dropped)
}

// Filter drops every row belonging to a duplicate publication, keeping the
// order of the rest.
func Filter[T any](ix *Index, rows []T, pubID func(T) string) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, dup := ix.dropped[pubID(r)]; dup {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Kept returns the publications that survive dedup, in input order.
func Kept(ix *Index, pubs []reference.Publication) []reference.Publication {
	return Filter(ix, pubs, func(p reference.Publication) string { return p.ID })
}
