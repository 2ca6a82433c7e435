// Package staff holds the year-indexed employee registry the author rows
// are reconciled against.
package staff

import (
	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
)

// Record is one staff member in one registry year. Records are immutable
// snapshots; Attributes (job category, status, ...) pass through untouched.
type Record struct {
	StaffID    string            `json:"staff_id"`
	LastName   string            `json:"last_name"`
	Initials   string            `json:"first_initials"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// FullNameKey returns "LAST INITIALS".
func (r Record) FullNameKey() string {
	return names.FullNameKey(r.LastName, r.Initials)
}

// normalized returns a copy with the name fields canonicalized.
func (r Record) normalized() Record {
	r.LastName = names.LastName(r.LastName)
	r.Initials = names.Initials(r.Initials)
	return r
}
