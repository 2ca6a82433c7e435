package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TickyWill/BiblioMeter-sub001/internal/fingerprint"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

func TestWriteReadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orphans.jsonl")
	rows := []reference.AuthorRow{
		{PubID: "p1", AuthorIdx: 0, Author: "INCONNU X", LastName: "INCONNU", Initials: "X", PubYear: 2023},
		{PubID: "p2", AuthorIdx: 3, Author: "NÚNEZ M", LastName: "NUNEZ", Initials: "M", PubYear: 2022},
	}

	if err := WriteJSONL(path, rows); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}
	got, err := ReadJSONL[reference.AuthorRow](path)
	if err != nil {
		t.Fatalf("ReadJSONL() error = %v", err)
	}
	if len(got) != 2 || got[1] != rows[1] {
		t.Errorf("ReadJSONL() = %+v", got)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestReadJSONL_NotFound(t *testing.T) {
	got, err := ReadJSONL[reference.AuthorRow](filepath.Join(t.TempDir(), "missing.jsonl"))
	if err != nil || got != nil {
		t.Errorf("ReadJSONL(missing) = %v, %v", got, err)
	}
}

func TestReadJSONL_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	writeFile(t, path, "{\"pub_id\":\"p1\"}\n\nnot json\n")

	if _, err := ReadJSONL[reference.AuthorRow](path); err == nil {
		t.Error("ReadJSONL() should fail on an invalid line")
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	sub := resolve.Submission{
		AuthorRow: reference.AuthorRow{PubID: "p1", Author: "MARTIN J", LastName: "MARTIN", Initials: "J", PubYear: 2023},
		Employee:  staff.Record{StaffID: "s1", LastName: "MARTIN", Initials: "J"},
		Year:      "2023",
		Method:    resolve.MethodExact,
	}

	err := WriteOutputs(dir, Outputs{
		Submitted:    []resolve.Submission{sub},
		Fingerprints: []fingerprint.Entry{{PubID: "p1", Fingerprint: "123"}},
	})
	if err != nil {
		t.Fatalf("WriteOutputs() error = %v", err)
	}

	for _, name := range []string{SubmittedFile, OrphansFile, FingerprintsFile, HomonymsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	got, err := ReadJSONL[resolve.Submission](filepath.Join(dir, SubmittedFile))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Employee.StaffID != "s1" || got[0].PubID != "p1" || got[0].Method != resolve.MethodExact {
		t.Errorf("submitted = %+v", got)
	}
}
