package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TickyWill/BiblioMeter-sub001/internal/config"
	"github.com/TickyWill/BiblioMeter-sub001/internal/logging"
	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
	"github.com/TickyWill/BiblioMeter-sub001/internal/storage"
)

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"registry/2023.csv": "staff_id;last_name;first_initials;dept\ns-martin;Martin;J;DTNM\ns-durand;Durand;P;DTS\n",
		"registry/2022.csv": "staff_id;last_name;first_initials;dept\ns-petit;Petit;C;DTCH\n",
		"authors.csv":       "pub_id;author_idx;author;pub_year\np1;0;MARTIN J;2023\np1;1;PETIT C;2023\np1;2;INCONNU X;2023\np2;0;MARTIN J;2023\n",
		"publications.csv":  "pub_id;year;first_author;title;issn;doi\np1;2023;MARTIN J;Solar;1234-5678;10.1/s\np2;2023;MARTIN J;Solar;1234-5678;10.1/s\n",
		"removals.csv":      "last_name;first_initials\n",
		"bibliometer.yml": `search:
  depth: 2
  trace_names: ["Martin J"]
inputs:
  registry_dir: registry
  authors: authors.csv
  publications: publications.csv
  removals: removals.csv
  delimiter: ";"
output:
  dir: results
  database: results/runs.db
`,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadRunSave(t *testing.T) {
	dir := writeWorkspace(t)
	cfg, err := config.Load(filepath.Join(dir, "bibliometer.yml"))
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if err := cfg.ValidateInputs(); err != nil {
		t.Fatalf("ValidateInputs() error = %v", err)
	}

	in, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if in.Registry.Len() != 2 || len(in.Authors) != 4 || len(in.Publications) != 2 {
		t.Fatalf("loaded %d years, %d authors, %d pubs", in.Registry.Len(), len(in.Authors), len(in.Publications))
	}

	var progress int
	counter := progressCounter{n: &progress}
	out, err := Run(context.Background(), in, OptionsFromConfig(cfg, logging.Discard(), counter))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if progress == 0 {
		t.Error("extra observer received no progress")
	}
	if len(out.Submitted) != 2 || len(out.Orphans) != 1 {
		t.Fatalf("submitted %v, orphans %+v", keys(out.Submitted), out.Orphans)
	}
	if out.Submitted[0].Employee.Attributes["dept"] != "DTNM" {
		t.Errorf("registry attributes not carried: %+v", out.Submitted[0].Employee)
	}

	run, err := Save(cfg, in, out)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if run.Dropped != 1 || run.Submitted != 2 || len(run.CorpusYears) != 2 {
		t.Errorf("run = %+v", run)
	}

	orphans, err := storage.ReadJSONL[reference.AuthorRow](filepath.Join(cfg.Output.Dir, storage.OrphansFile))
	if err != nil || len(orphans) != 1 || orphans[0].LastName != "INCONNU" {
		t.Errorf("orphans.jsonl = %+v, %v", orphans, err)
	}

	db, err := storage.OpenDB(cfg.Output.Database)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	runs, err := db.ListRuns(0)
	if err != nil || len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("ListRuns() = %+v, %v", runs, err)
	}
}

func TestSave_Locked(t *testing.T) {
	dir := writeWorkspace(t)
	cfg, err := config.Load(filepath.Join(dir, "bibliometer.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Output.Database), 0755); err != nil {
		t.Fatal(err)
	}

	held, err := storage.AcquireLock(storage.LockPath(cfg.Output.Database))
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	if _, err := Save(cfg, Input{}, Output{}); !errors.Is(err, storage.ErrLocked) {
		t.Errorf("Save() error = %v, want ErrLocked", err)
	}
}

func TestTraceKeys(t *testing.T) {
	got := traceKeys(names.New(0), []string{"Martin", "  Lefèvre  ", "martin j-p", "VAN DER BERG J"})
	want := []string{"MARTIN", "LEFEVRE", "MARTIN JP", "VAN DER BERG J"}
	if len(got) != len(want) {
		t.Fatalf("traceKeys() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("traceKeys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

type progressCounter struct {
	resolve.NopObserver
	n *int
}

func (p progressCounter) Progress(done, total int) {
	*p.n++
}
