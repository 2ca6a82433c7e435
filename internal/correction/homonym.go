package correction

import (
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
)

// HomonymChoice names the staff member a human picked for a flagged row.
type HomonymChoice struct {
	PubID     string `json:"pub_id"`
	AuthorIdx int    `json:"author_idx"`
	StaffID   string `json:"staff_id"`
}

// HomonymReport summarizes applied choices.
type HomonymReport struct {
	Choices  int                `json:"choices"`
	Resolved int                `json:"resolved"`
	Unused   []reference.RowKey `json:"unused,omitempty"`
}

// ResolveHomonyms keeps, for each flagged row with a valid choice, only the
// chosen candidate, marked resolved. A choice is ignored when its row is not
// flagged or the staff ID is not among the row's candidates.
func ResolveHomonyms(subs []resolve.Submission, choices []HomonymChoice) ([]resolve.Submission, HomonymReport) {
	report := HomonymReport{Choices: len(choices)}
	if len(choices) == 0 {
		return subs, report
	}

	picked := make(map[reference.RowKey]string, len(choices))
	for _, c := range choices {
		picked[reference.RowKey{PubID: c.PubID, AuthorIdx: c.AuthorIdx}] = c.StaffID
	}

	valid := make(map[reference.RowKey]bool)
	for _, s := range subs {
		if s.Homonym != reference.HomonymFlagged {
			continue
		}
		if id, ok := picked[s.Key()]; ok && id == s.Employee.StaffID {
			valid[s.Key()] = true
		}
	}

	out := make([]resolve.Submission, 0, len(subs))
	for _, s := range subs {
		if s.Homonym != reference.HomonymFlagged || !valid[s.Key()] {
			out = append(out, s)
			continue
		}
		if picked[s.Key()] != s.Employee.StaffID {
			continue
		}
		s.Homonym = reference.HomonymResolved
		out = append(out, s)
	}

	report.Resolved = len(valid)
	seen := make(map[reference.RowKey]bool, len(choices))
	for _, c := range choices {
		key := reference.RowKey{PubID: c.PubID, AuthorIdx: c.AuthorIdx}
		if !valid[key] && !seen[key] {
			report.Unused = append(report.Unused, key)
		}
		seen[key] = true
	}
	return out, report
}
