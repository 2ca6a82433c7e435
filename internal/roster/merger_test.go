package roster

import (
	"testing"

	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

func row(idx int, display string) reference.AuthorRow {
	r := reference.AuthorRow{PubID: "p1", AuthorIdx: idx, Author: display, PubYear: 2023}
	return r.WithName(names.New(0).Split(display))
}

func TestMerge(t *testing.T) {
	temporary := New(KindTemporary, []Entry{
		{LastName: "Nguyen", Initials: "T-H", Attributes: map[string]string{"status": "PhD"}},
	})
	external := New(KindExternal, []Entry{
		{LastName: "NGUYEN", Initials: "TH", Attributes: map[string]string{"status": "contractor"}},
		{LastName: "SMITH", Initials: "A"},
		{LastName: "SMITH", Initials: "A"},
	})

	rows := []reference.AuthorRow{
		row(0, "NGUYEN T-H"),
		row(1, "MARTIN J"),
		row(2, "Smith A."),
		row(3, "SMITH"),
	}

	matched, pending := NewMerger(temporary, nil, external).Merge(rows)

	if len(matched) != 2 {
		t.Fatalf("expected 2 roster matches, got %d", len(matched))
	}
	if matched[0].Kind != KindTemporary || matched[0].Entries[0].Attributes["status"] != "PhD" {
		t.Errorf("first roster should claim NGUYEN: %+v", matched[0])
	}
	if matched[1].Kind != KindExternal || matched[1].Homonym != reference.HomonymFlagged {
		t.Errorf("SMITH A should be a flagged external match: %+v", matched[1])
	}

	if len(pending) != 2 || pending[0].AuthorIdx != 1 || pending[1].AuthorIdx != 3 {
		t.Errorf("pending = %+v", pending)
	}
}

func TestMerge_NoRosters(t *testing.T) {
	rows := []reference.AuthorRow{row(0, "MARTIN J")}
	matched, pending := NewMerger().Merge(rows)
	if len(matched) != 0 || len(pending) != 1 {
		t.Errorf("matched=%d pending=%d", len(matched), len(pending))
	}
}
