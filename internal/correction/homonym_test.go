package correction

import (
	"testing"

	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

func flagged(pubID string, idx int, staffID string) resolve.Submission {
	return resolve.Submission{
		AuthorRow: reference.AuthorRow{PubID: pubID, AuthorIdx: idx, LastName: "MARTIN", Initials: "J", Homonym: reference.HomonymFlagged},
		Employee:  staff.Record{StaffID: staffID, LastName: "MARTIN", Initials: "J"},
		Method:    resolve.MethodExact,
	}
}

func TestResolveHomonyms(t *testing.T) {
	subs := []resolve.Submission{
		flagged("p1", 0, "s1"),
		flagged("p1", 0, "s2"),
		flagged("p2", 3, "s1"),
		flagged("p2", 3, "s2"),
		{AuthorRow: reference.AuthorRow{PubID: "p3", AuthorIdx: 0}, Employee: staff.Record{StaffID: "s9"}},
	}
	choices := []HomonymChoice{
		{PubID: "p1", AuthorIdx: 0, StaffID: "s2"},
		{PubID: "p2", AuthorIdx: 3, StaffID: "s7"}, // not a candidate
		{PubID: "p3", AuthorIdx: 0, StaffID: "s9"}, // not flagged
	}

	got, report := ResolveHomonyms(subs, choices)

	if len(got) != 4 {
		t.Fatalf("expected 4 submissions, got %d", len(got))
	}
	if got[0].Employee.StaffID != "s2" || got[0].Homonym != reference.HomonymResolved {
		t.Errorf("p1 = %+v", got[0])
	}
	if got[1].Homonym != reference.HomonymFlagged || got[2].Homonym != reference.HomonymFlagged {
		t.Error("p2 should remain flagged")
	}
	if report.Resolved != 1 || len(report.Unused) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestResolveHomonyms_NoChoices(t *testing.T) {
	subs := []resolve.Submission{flagged("p1", 0, "s1")}
	got, report := ResolveHomonyms(subs, nil)
	if len(got) != 1 || report.Resolved != 0 {
		t.Errorf("got %d subs, report %+v", len(got), report)
	}
}
