// Package resolve drives the match engine across registry years, most
// recent first, carrying unmatched author rows forward to older years.
package resolve

import (
	"errors"

	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

// DefaultDepth is the number of registry years searched per publication year.
const DefaultDepth = 5

// ErrNoRegistryYears is the error form of Result.NoRegistry, for callers
// that want to stop and ask for a complete registry.
var ErrNoRegistryYears = errors.New("no registry years available")

// Method records how a submission was produced.
type Method string

const (
	MethodExact           Method = "exact"
	MethodOrphanReduction Method = "orphan_reduction"
	MethodRosterTemporary Method = "roster_temporary"
	MethodRosterExternal  Method = "roster_external"
)

// Submission is a resolved author row paired with one matched staff record.
// A homonym row yields one submission per candidate, all flagged.
type Submission struct {
	reference.AuthorRow
	Employee staff.Record `json:"employee"`
	Year     string       `json:"registry_year,omitempty"` // empty for roster matches
	Method   Method       `json:"method"`
}

// Shortfall records a publication year whose search ran with fewer registry
// years than requested.
type Shortfall struct {
	PubYear   int `json:"pub_year"`
	Available int `json:"available"`
}

// DepthReport describes the depth actually searched.
type DepthReport struct {
	Requested  int         `json:"requested"`
	Effective  int         `json:"effective"` // deepest search actually run
	Shortfalls []Shortfall `json:"shortfalls,omitempty"`
}

// Insufficient reports whether any publication year was searched with a
// reduced depth.
func (d DepthReport) Insufficient() bool {
	return len(d.Shortfalls) > 0
}

// Result is the submitted/orphan partition, both in input row order.
type Result struct {
	Submitted []Submission
	Orphans   []reference.AuthorRow
	Depth     DepthReport

	noRegistry bool
}

// NoRegistry reports the empty-result signal: the registry holds no year,
// so nothing could be searched. An empty row set against a populated
// registry is an ordinary empty result.
func (r Result) NoRegistry() bool {
	return r.noRegistry
}

// Homonyms returns the flagged submissions.
func (r Result) Homonyms() []Submission {
	var out []Submission
	for _, s := range r.Submitted {
		if s.Homonym == reference.HomonymFlagged {
			out = append(out, s)
		}
	}
	return out
}
