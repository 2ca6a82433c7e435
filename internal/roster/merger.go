package roster

import (
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

// Merger checks pending rows against rosters in order; the first roster
// holding the row's key claims it.
type Merger struct {
	rosters []*Roster
}

// NewMerger returns a merger over the given rosters. Nil rosters are skipped.
func NewMerger(rosters ...*Roster) *Merger {
	m := &Merger{}
	for _, r := range rosters {
		if r != nil {
			m.rosters = append(m.rosters, r)
		}
	}
	return m
}

// Merge splits rows into roster matches and rows still pending, both in
// input order.
func (m *Merger) Merge(rows []reference.AuthorRow) ([]Match, []reference.AuthorRow) {
	var matched []Match
	pending := make([]reference.AuthorRow, 0, len(rows))

	for _, row := range rows {
		if mt, ok := m.lookup(row); ok {
			matched = append(matched, mt)
			continue
		}
		pending = append(pending, row)
	}
	return matched, pending
}

func (m *Merger) lookup(row reference.AuthorRow) (Match, bool) {
	if row.LastName == "" {
		return Match{}, false
	}
	for _, r := range m.rosters {
		entries := r.Lookup(row.LastName, row.Initials)
		if len(entries) == 0 {
			continue
		}
		flag := reference.HomonymNone
		if len(entries) > 1 {
			flag = reference.HomonymFlagged
		}
		return Match{Row: row, Kind: r.Kind(), Entries: entries, Homonym: flag}, true
	}
	return Match{}, false
}
