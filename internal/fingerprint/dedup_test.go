package fingerprint

import (
	"reflect"
	"testing"

	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

func samplePubs() []reference.Publication {
	same := reference.Publication{Year: 2023, FirstAuthor: "Martin J", Title: "Deep sea vents", ISSN: "1234-5678", DOI: "10.1/vents"}
	a, b := same, same
	a.ID = "2023_0001"
	b.ID = "2023_0007"
	return []reference.Publication{
		a,
		{ID: "2023_0002", Year: 2023, FirstAuthor: "Durand P", Title: "Other", ISSN: "1111-2222", DOI: "10.1/other"},
		b,
	}
}

func TestDeduplicate_FirstOccurrenceWins(t *testing.T) {
	// Scenario E
	ix := Deduplicate(samplePubs())

	if len(ix.Entries) != 2 {
		t.Fatalf("expected 2 kept publications, got %d", len(ix.Entries))
	}
	if ix.Entries[0].PubID != "2023_0001" || ix.Entries[1].PubID != "2023_0002" {
		t.Errorf("entries = %+v", ix.Entries)
	}
	primary, dropped := ix.Dropped("2023_0007")
	if !dropped || primary != "2023_0001" {
		t.Errorf("Dropped(2023_0007) = %q, %v", primary, dropped)
	}
	if len(ix.Groups) != 1 || !reflect.DeepEqual(ix.Groups[0].Duplicates, []string{"2023_0007"}) {
		t.Errorf("groups = %+v", ix.Groups)
	}
	if _, ok := ix.Fingerprint("2023_0007"); ok {
		t.Error("dropped publication should have no fingerprint entry")
	}
}

func TestFilter_RemovesRowsOfDroppedPublications(t *testing.T) {
	ix := Deduplicate(samplePubs())
	rows := []reference.AuthorRow{
		{PubID: "2023_0001", AuthorIdx: 0},
		{PubID: "2023_0007", AuthorIdx: 0},
		{PubID: "2023_0002", AuthorIdx: 0},
		{PubID: "2023_0007", AuthorIdx: 1},
	}

	got := Filter(ix, rows, func(r reference.AuthorRow) string { return r.PubID })

	if len(got) != 2 || got[0].PubID != "2023_0001" || got[1].PubID != "2023_0002" {
		t.Errorf("Filter() = %+v", got)
	}
}

func TestFilter_KeepsRowsOfUnlistedPublications(t *testing.T) {
	ix := Deduplicate(samplePubs())
	rows := []reference.AuthorRow{{PubID: "2023_0099", AuthorIdx: 0}}

	got := Filter(ix, rows, func(r reference.AuthorRow) string { return r.PubID })
	if len(got) != 1 {
		t.Errorf("row of a publication outside the table dropped: %+v", got)
	}
	for _, e := range ix.Entries {
		if e.PubID == "2023_0099" {
			t.Error("publication outside the table fingerprinted")
		}
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	pubs := samplePubs()
	once := Deduplicate(pubs)
	kept := Kept(once, pubs)
	twice := Deduplicate(kept)

	if !reflect.DeepEqual(once.Entries, twice.Entries) {
		t.Errorf("entries differ: %+v vs %+v", once.Entries, twice.Entries)
	}
	if twice.DuplicateCount() != 0 {
		t.Errorf("second pass dropped %d publications", twice.DuplicateCount())
	}
	if !reflect.DeepEqual(Kept(twice, kept), kept) {
		t.Error("second pass changed the publication list")
	}
}

func TestDeduplicate_RepeatedIDIgnored(t *testing.T) {
	p := reference.Publication{ID: "x", Year: 2020, Title: "T"}
	ix := Deduplicate([]reference.Publication{p, p})
	if len(ix.Entries) != 1 || ix.DuplicateCount() != 0 {
		t.Errorf("entries=%d dupes=%d", len(ix.Entries), ix.DuplicateCount())
	}
}
