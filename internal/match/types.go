// Package match decides, for one author row and one registry year, which
// staff records the row refers to.
package match

import (
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

// Method indicates how the candidate set was found.
type Method string

const (
	MethodNone            Method = ""                 // no match, row stays an orphan
	MethodExact           Method = "exact"            // exact last-name lookup
	MethodOrphanReduction Method = "orphan_reduction" // substring containment fallback
)

// Candidate is a staff record proposed for an author row. FullNameKey is the
// key the initials comparison runs on; for orphan-reduction candidates it is
// built from the author's last name, not the registry's.
type Candidate struct {
	staff.Record
	FullNameKey string `json:"full_name_key"`
}

// Result is produced fresh for each (author row, registry year) attempt.
type Result struct {
	Row        reference.AuthorRow
	Year       string
	Method     Method
	Candidates []Candidate
	Homonym    reference.HomonymFlag
}

// Matched reports whether the row should be committed for this year.
func (r Result) Matched() bool {
	return len(r.Candidates) > 0
}
