// Package correction overlays human-supplied fixes on resolved author rows:
// spelling corrections, metadata-error replacements, erroneous-affiliation
// removals, and homonym choices.
//
// Corrections are best-effort: an entry that matches no row is not an error.
// The Applier counts such entries so the caller can report them.
package correction

import (
	"fmt"
	"sort"

	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

// NameKey is a normalized (last name, initials) pair.
type NameKey struct {
	Last     string `json:"last_name"`
	Initials string `json:"first_initials"`
}

// Key normalizes a raw (last name, initials) pair.
func Key(last, initials string) NameKey {
	return NameKey{Last: names.LastName(last), Initials: names.Initials(initials)}
}

func (k NameKey) String() string {
	return names.FullNameKey(k.Last, k.Initials)
}

// Spelling replaces a misspelled name.
type Spelling struct {
	From NameKey
	To   NameKey
}

// MetadataFix replaces a name wrongly recorded by a bibliographic source for
// one publication year.
type MetadataFix struct {
	PubYear int
	From    NameKey
	To      NameKey
}

// Tables holds the three correction tables.
type Tables struct {
	Spelling []Spelling
	Metadata []MetadataFix
	Removals []NameKey
}

// Len returns the total number of entries.
func (t Tables) Len() int {
	return len(t.Spelling) + len(t.Metadata) + len(t.Removals)
}

// TableReport summarizes one table's effect.
type TableReport struct {
	Entries int      `json:"entries"`
	Applied int      `json:"applied"`          // rows changed or removed
	Unused  []string `json:"unused,omitempty"` // keys that matched no row
}

// Report summarizes all tables.
type Report struct {
	Spelling TableReport `json:"spelling"`
	Metadata TableReport `json:"metadata"`
	Removal  TableReport `json:"removal"`
}

type yearKey struct {
	year int
	key  NameKey
}

// Applier applies the tables in fixed order: spelling, metadata, removal.
// Usage is accumulated across calls, so one Applier can serve both the
// submitted and the orphan sets. An Applier is not safe for concurrent use.
type Applier struct {
	spelling map[NameKey]NameKey
	metadata map[yearKey]NameKey
	removals map[NameKey]bool

	spellingHits map[NameKey]int
	metadataHits map[yearKey]int
	removalHits  map[NameKey]int
}

// NewApplier indexes the tables. Later duplicate entries override earlier ones.
func NewApplier(t Tables) *Applier {
	a := &Applier{
		spelling:     make(map[NameKey]NameKey, len(t.Spelling)),
		metadata:     make(map[yearKey]NameKey, len(t.Metadata)),
		removals:     make(map[NameKey]bool, len(t.Removals)),
		spellingHits: make(map[NameKey]int),
		metadataHits: make(map[yearKey]int),
		removalHits:  make(map[NameKey]int),
	}
	for _, s := range t.Spelling {
		a.spelling[s.From] = s.To
	}
	for _, m := range t.Metadata {
		a.metadata[yearKey{year: m.PubYear, key: m.From}] = m.To
	}
	for _, k := range t.Removals {
		a.removals[k] = true
	}
	return a
}

// Rows applies the tables to author rows.
func (a *Applier) Rows(rows []reference.AuthorRow) []reference.AuthorRow {
	return Apply(a, rows,
		func(r reference.AuthorRow) reference.AuthorRow { return r },
		func(_ reference.AuthorRow, r reference.AuthorRow) reference.AuthorRow { return r },
	)
}

// Apply runs the tables over any row type carrying an author row. get
// extracts the author row; set returns a copy of the row with a new author
// row. Removed rows are dropped; the rest keep their order.
func Apply[T any](a *Applier, rows []T, get func(T) reference.AuthorRow, set func(T, reference.AuthorRow) T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		author, keep := a.one(get(row))
		if !keep {
			continue
		}
		out = append(out, set(row, author))
	}
	return out
}

func (a *Applier) one(row reference.AuthorRow) (reference.AuthorRow, bool) {
	key := NameKey{Last: row.LastName, Initials: row.Initials}

	if to, ok := a.spelling[key]; ok {
		a.spellingHits[key]++
		key = to
	}

	yk := yearKey{year: row.PubYear, key: key}
	if to, ok := a.metadata[yk]; ok {
		a.metadataHits[yk]++
		key = to
	}

	if a.removals[key] {
		a.removalHits[key]++
		return reference.AuthorRow{}, false
	}

	if key.Last == row.LastName && key.Initials == row.Initials {
		return row, true
	}
	return row.WithName(names.Name{Last: key.Last, Initials: key.Initials}), true
}

// Report returns the accumulated usage of every table.
func (a *Applier) Report() Report {
	var r Report

	r.Spelling.Entries = len(a.spelling)
	for k := range a.spelling {
		if n := a.spellingHits[k]; n > 0 {
			r.Spelling.Applied += n
		} else {
			r.Spelling.Unused = append(r.Spelling.Unused, k.String())
		}
	}

	r.Metadata.Entries = len(a.metadata)
	for k := range a.metadata {
		if n := a.metadataHits[k]; n > 0 {
			r.Metadata.Applied += n
		} else {
			r.Metadata.Unused = append(r.Metadata.Unused, fmt.Sprintf("%s (%d)", k.key, k.year))
		}
	}

	r.Removal.Entries = len(a.removals)
	for k := range a.removals {
		if n := a.removalHits[k]; n > 0 {
			r.Removal.Applied += n
		} else {
			r.Removal.Unused = append(r.Removal.Unused, k.String())
		}
	}

	sort.Strings(r.Spelling.Unused)
	sort.Strings(r.Metadata.Unused)
	sort.Strings(r.Removal.Unused)
	return r
}
