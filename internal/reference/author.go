package reference

import (
	"fmt"

	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
)

// HomonymFlag records whether a match is ambiguous.
type HomonymFlag string

const (
	HomonymNone     HomonymFlag = ""         // single candidate
	HomonymFlagged  HomonymFlag = "flagged"  // several candidates, needs a human choice
	HomonymResolved HomonymFlag = "resolved" // a human picked one candidate
)

// AuthorRow is one (publication, author position) row produced by the
// upstream parser.
type AuthorRow struct {
	PubID     string      `json:"pub_id"`
	AuthorIdx int         `json:"author_idx"` // 0-based position in the author list
	Author    string      `json:"author"`     // raw display name
	LastName  string      `json:"last_name"`
	Initials  string      `json:"first_initials"`
	Homonym   HomonymFlag `json:"homonym,omitempty"`
	PubYear   int         `json:"pub_year"`
}

// RowKey identifies an author row within a corpus.
type RowKey struct {
	PubID     string
	AuthorIdx int
}

// Key returns the row's identity.
func (r AuthorRow) Key() RowKey {
	return RowKey{PubID: r.PubID, AuthorIdx: r.AuthorIdx}
}

// Name returns the normalized name carried by the row.
func (r AuthorRow) Name() names.Name {
	return names.Name{Last: r.LastName, Initials: r.Initials}
}

// FullNameKey returns "LAST INITIALS".
func (r AuthorRow) FullNameKey() string {
	return names.FullNameKey(r.LastName, r.Initials)
}

// WithName returns a copy of the row carrying the given normalized name.
func (r AuthorRow) WithName(n names.Name) AuthorRow {
	r.LastName = n.Last
	r.Initials = n.Initials
	return r
}

func (k RowKey) String() string {
	return fmt.Sprintf("%s#%d", k.PubID, k.AuthorIdx)
}

// Normalize derives LastName and Initials from the raw display name for
// every row, returning new rows.
func Normalize(rows []AuthorRow, n names.Normalizer) []AuthorRow {
	out := make([]AuthorRow, len(rows))
	for i, r := range rows {
		out[i] = r.WithName(n.Split(r.Author))
	}
	return out
}
