package staff

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrInvalidYear is returned for registry keys that are not four digits.
var ErrInvalidYear = errors.New("registry year must be 4 digits")

// Year is one immutable annual snapshot of the roster, indexed by last name.
// Last names are not unique within a year.
type Year struct {
	year      string
	records   []Record
	byLast    map[string][]int
	lastNames []string // distinct, in first-seen order
}

// Registry maps 4-digit years to snapshots.
type Registry struct {
	years map[string]*Year
	order []string // most recent first
}

// NewRegistry builds a registry from per-year record lists. Record names are
// canonicalized the same way author names are.
func NewRegistry(byYear map[string][]Record) (*Registry, error) {
	reg := &Registry{years: make(map[string]*Year, len(byYear))}
	for year, records := range byYear {
		if !ValidYear(year) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidYear, year)
		}
		reg.years[year] = newYear(year, records)
		reg.order = append(reg.order, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(reg.order)))
	return reg, nil
}

func newYear(year string, records []Record) *Year {
	y := &Year{
		year:    year,
		records: make([]Record, len(records)),
		byLast:  make(map[string][]int),
	}
	for i, r := range records {
		r = r.normalized()
		y.records[i] = r
		if _, seen := y.byLast[r.LastName]; !seen {
			y.lastNames = append(y.lastNames, r.LastName)
		}
		y.byLast[r.LastName] = append(y.byLast[r.LastName], i)
	}
	return y
}

// ValidYear reports whether s is a 4-digit year.
func ValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil && s[0] != '-' && s[0] != '+'
}

// Years returns the available years, most recent first.
func (r *Registry) Years() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registry years.
func (r *Registry) Len() int {
	return len(r.order)
}

// Year returns the snapshot for a year.
func (r *Registry) Year(year string) (*Year, bool) {
	y, ok := r.years[year]
	return y, ok
}

// SearchSequence returns the registry years at or before pubYear, most
// recent first. When pubYear itself is absent the sequence starts at the
// nearest earlier year.
func (r *Registry) SearchSequence(pubYear int) []string {
	var seq []string
	for _, y := range r.order {
		if n, _ := strconv.Atoi(y); n <= pubYear {
			seq = append(seq, y)
		}
	}
	return seq
}

// Name returns the snapshot's year string.
func (y *Year) Name() string {
	return y.year
}

// Lookup returns the records with exactly this (canonical) last name.
func (y *Year) Lookup(lastName string) []Record {
	idx := y.byLast[lastName]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = y.records[j]
	}
	return out
}

// LastNames returns the distinct last names in first-seen order.
func (y *Year) LastNames() []string {
	return y.lastNames
}

// Records returns every record in the snapshot.
func (y *Year) Records() []Record {
	return y.records
}
