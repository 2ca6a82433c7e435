package reference

import (
	"testing"

	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
)

func TestNormalize(t *testing.T) {
	rows := []AuthorRow{
		{PubID: "p1", AuthorIdx: 0, Author: "Martin J-P", PubYear: 2023},
		{PubID: "p1", AuthorIdx: 1, Author: "Durand", PubYear: 2023},
	}

	got := Normalize(rows, names.New(0))

	if got[0].LastName != "MARTIN" || got[0].Initials != "JP" {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[1].LastName != "" {
		t.Errorf("row 1 last name = %q, want empty", got[1].LastName)
	}
	if rows[0].LastName != "" {
		t.Error("Normalize mutated its input")
	}
	if got[0].FullNameKey() != "MARTIN JP" {
		t.Errorf("FullNameKey() = %q", got[0].FullNameKey())
	}
}

func TestRowKey_String(t *testing.T) {
	k := AuthorRow{PubID: "2023_0012", AuthorIdx: 3}.Key()
	if k.String() != "2023_0012#3" {
		t.Errorf("String() = %q", k.String())
	}
}
