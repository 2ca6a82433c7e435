// Package roster folds the supplementary rosters (temporary researchers,
// externally contracted staff) into resolution before the registry search.
package roster

import (
	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

// Kind names a supplementary roster.
type Kind string

const (
	KindTemporary Kind = "temporary" // temporary researchers (doctoral, post-doc, visiting)
	KindExternal  Kind = "external"  // externally contracted staff
)

// Entry is one roster line. Attributes are merged verbatim into matched rows.
type Entry struct {
	LastName   string            `json:"last_name"`
	Initials   string            `json:"first_initials"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Roster is an exact-match index over entries.
type Roster struct {
	kind    Kind
	entries []Entry
	byKey   map[string][]int
}

// New indexes entries by canonical (last name, initials).
func New(kind Kind, entries []Entry) *Roster {
	r := &Roster{
		kind:    kind,
		entries: make([]Entry, len(entries)),
		byKey:   make(map[string][]int, len(entries)),
	}
	for i, e := range entries {
		e.LastName = names.LastName(e.LastName)
		e.Initials = names.Initials(e.Initials)
		r.entries[i] = e
		key := names.FullNameKey(e.LastName, e.Initials)
		r.byKey[key] = append(r.byKey[key], i)
	}
	return r
}

// Kind returns the roster kind.
func (r *Roster) Kind() Kind {
	return r.kind
}

// Len returns the number of entries.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Lookup returns the entries with exactly this (last name, initials).
func (r *Roster) Lookup(last, initials string) []Entry {
	idx := r.byKey[names.FullNameKey(last, initials)]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Entry, len(idx))
	for i, j := range idx {
		out[i] = r.entries[j]
	}
	return out
}

// Match is a row claimed by a roster.
type Match struct {
	Row     reference.AuthorRow
	Kind    Kind
	Entries []Entry
	Homonym reference.HomonymFlag
}
