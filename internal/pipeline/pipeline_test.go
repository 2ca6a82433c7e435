package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/TickyWill/BiblioMeter-sub001/internal/correction"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
	"github.com/TickyWill/BiblioMeter-sub001/internal/roster"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

func testInput(t *testing.T) Input {
	t.Helper()
	reg, err := staff.NewRegistry(map[string][]staff.Record{
		"2023": {
			{StaffID: "s-martin", LastName: "MARTIN", Initials: "J"},
			{StaffID: "s-dupont-a", LastName: "DUPONT", Initials: "A"},
			{StaffID: "s-dupont-b", LastName: "DUPONT", Initials: "A"},
			{StaffID: "s-durand", LastName: "DURAND", Initials: "P"},
		},
		"2022": {
			{StaffID: "s-petit", LastName: "PETIT", Initials: "C"},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	author := func(pub string, idx int, name string, year int) reference.AuthorRow {
		return reference.AuthorRow{PubID: pub, AuthorIdx: idx, Author: name, PubYear: year}
	}
	dup := reference.Publication{Year: 2023, FirstAuthor: "MARTIN J", Title: "Perovskite stability", ISSN: "1234-5678", DOI: "10.1/pvk"}
	p1, p2 := dup, dup
	p1.ID, p2.ID = "p1", "p2"

	return Input{
		Registry: reg,
		Authors: []reference.AuthorRow{
			author("p1", 0, "MARTIN J", 2023),
			author("p1", 1, "DURANT P", 2023),
			author("p1", 2, "DUPONT A", 2023),
			author("p1", 3, "INCONNU X", 2023),
			author("p2", 0, "MARTIN J", 2023),
			author("p2", 1, "PETIT C", 2023),
			author("p3", 0, "PETIT C", 2022),
			author("p3", 1, "FAUX Y", 2022),
		},
		Publications: []reference.Publication{
			p1,
			p2,
			{ID: "p3", Year: 2022, FirstAuthor: "PETIT C", Title: "Heat pumps", ISSN: "8765-4321", DOI: "10.1/hp"},
		},
		Corrections: correction.Tables{
			Spelling: []correction.Spelling{{From: correction.Key("DURANT", "P"), To: correction.Key("DURAND", "P")}},
			Removals: []correction.NameKey{correction.Key("FAUX", "Y")},
		},
		HomonymChoices: []correction.HomonymChoice{{PubID: "p1", AuthorIdx: 2, StaffID: "s-dupont-b"}},
	}
}

func keys(subs []resolve.Submission) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.Key().String() + "=" + s.Employee.StaffID
	}
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	out, err := Run(context.Background(), testInput(t), Options{Depth: 2, Workers: 2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"p1#0=s-martin", "p1#1=s-durand", "p1#2=s-dupont-b", "p3#0=s-petit"}
	got := keys(out.Submitted)
	if len(got) != len(want) {
		t.Fatalf("submitted = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("submitted[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if out.Submitted[1].LastName != "DURAND" {
		t.Errorf("corrected row keeps name %q", out.Submitted[1].LastName)
	}
	if out.Submitted[2].Homonym != reference.HomonymResolved {
		t.Errorf("homonym flag = %q, want resolved", out.Submitted[2].Homonym)
	}
	if out.Submitted[3].Year != "2022" {
		t.Errorf("PETIT C registry year = %s", out.Submitted[3].Year)
	}

	if len(out.Orphans) != 1 || out.Orphans[0].Author != "INCONNU X" {
		t.Errorf("orphans = %+v", out.Orphans)
	}
	if len(out.Homonyms) != 0 {
		t.Errorf("homonyms left = %v", keys(out.Homonyms))
	}
	if out.Rematched != 1 {
		t.Errorf("Rematched = %d, want 1", out.Rematched)
	}
	if out.Corrections.Spelling.Applied != 1 || out.Corrections.Removal.Applied != 1 {
		t.Errorf("corrections = %+v", out.Corrections)
	}
	if out.Choices.Resolved != 1 {
		t.Errorf("choices = %+v", out.Choices)
	}
	if len(out.Fingerprints) != 2 || len(out.Duplicates) != 1 || out.Duplicates[0].Duplicates[0] != "p2" {
		t.Errorf("fingerprints = %+v, duplicates = %+v", out.Fingerprints, out.Duplicates)
	}
	if !out.Depth.Insufficient() {
		t.Error("2022 rows searched one year at depth 2; expected a shortfall")
	}
}

func TestRun_DuplicatePublicationRowsRemovedFromBothSets(t *testing.T) {
	// Scenario E: rows of the later ID disappear whether matched or not.
	in := testInput(t)
	in.Authors = append(in.Authors, reference.AuthorRow{PubID: "p2", AuthorIdx: 2, Author: "NOBODY Z", PubYear: 2023})

	out, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, s := range out.Submitted {
		if s.PubID == "p2" {
			t.Errorf("submitted row of duplicate publication: %s", s.Key())
		}
	}
	for _, o := range out.Orphans {
		if o.PubID == "p2" {
			t.Errorf("orphan row of duplicate publication: %s", o.Key())
		}
	}
}

func TestRun_UnresolvedHomonymsSurfaced(t *testing.T) {
	in := testInput(t)
	in.HomonymChoices = nil

	out, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Homonyms) != 2 {
		t.Fatalf("homonyms = %v, want both DUPONT A candidates", keys(out.Homonyms))
	}
	for _, h := range out.Homonyms {
		if h.Homonym != reference.HomonymFlagged {
			t.Errorf("%s flag = %q", h.Key(), h.Homonym)
		}
	}
}

func TestRun_RostersClaimBeforeRegistry(t *testing.T) {
	in := testInput(t)
	in.Rosters = []*roster.Roster{
		roster.New(roster.KindExternal, []roster.Entry{{LastName: "INCONNU", Initials: "X", Attributes: map[string]string{"company": "ACME"}}}),
	}

	out, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Orphans) != 0 {
		t.Errorf("orphans = %+v", out.Orphans)
	}
	var found bool
	for _, s := range out.Submitted {
		if s.Author == "INCONNU X" {
			found = s.Method == resolve.MethodRosterExternal && s.Employee.Attributes["company"] == "ACME"
		}
	}
	if !found {
		t.Error("external roster entry not submitted")
	}
}

func TestRun_NoRegistry(t *testing.T) {
	in := testInput(t)
	empty, err := staff.NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	in.Registry = empty

	out, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !out.NoRegistry || len(out.Submitted) != 0 || len(out.Orphans) != 0 {
		t.Errorf("expected empty NoRegistry output, got %+v", out)
	}
}

func TestRun_EmptyAuthorsWithRegistry(t *testing.T) {
	in := Input{Registry: testInput(t).Registry}

	out, err := Run(context.Background(), in, Options{Depth: 2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.NoRegistry {
		t.Error("populated registry reported as missing for an empty author list")
	}
	if len(out.Submitted) != 0 || len(out.Orphans) != 0 {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestRun_CorrectionPassKeepsDepthReport(t *testing.T) {
	out, err := Run(context.Background(), testInput(t), Options{Depth: 5})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Rematched != 1 {
		t.Fatalf("Rematched = %d, want 1", out.Rematched)
	}
	// 2023 is short in both passes and must be reported once.
	want := []resolve.Shortfall{{PubYear: 2023, Available: 2}, {PubYear: 2022, Available: 1}}
	if !reflect.DeepEqual(out.Depth.Shortfalls, want) {
		t.Errorf("Shortfalls = %+v, want %+v", out.Depth.Shortfalls, want)
	}
}

func TestMergeDepth(t *testing.T) {
	first := resolve.DepthReport{Requested: 3, Effective: 1, Shortfalls: []resolve.Shortfall{{PubYear: 2021, Available: 1}}}
	second := resolve.DepthReport{Requested: 3, Effective: 2, Shortfalls: []resolve.Shortfall{
		{PubYear: 2021, Available: 1},
		{PubYear: 2022, Available: 2},
	}}

	got := mergeDepth(first, second)
	if got.Effective != 2 || got.Requested != 3 {
		t.Errorf("depth = %+v", got)
	}
	want := []resolve.Shortfall{{PubYear: 2021, Available: 1}, {PubYear: 2022, Available: 2}}
	if !reflect.DeepEqual(got.Shortfalls, want) {
		t.Errorf("Shortfalls = %+v, want %+v", got.Shortfalls, want)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, testInput(t), Options{}); err == nil {
		t.Error("Run() should fail on a cancelled context")
	}
}
