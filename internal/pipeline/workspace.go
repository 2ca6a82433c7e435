package pipeline

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TickyWill/BiblioMeter-sub001/internal/config"
	"github.com/TickyWill/BiblioMeter-sub001/internal/match"
	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
	"github.com/TickyWill/BiblioMeter-sub001/internal/roster"
	"github.com/TickyWill/BiblioMeter-sub001/internal/storage"
)

// Load reads every input table named by the config.
func Load(cfg *config.Config) (Input, error) {
	loader := storage.NewLoader(cfg.Inputs.Delimiter, cfg.Institute.AffiliationColumns)
	var (
		in  Input
		err error
	)

	if in.Registry, err = loader.LoadRegistry(cfg.Inputs.RegistryDir); err != nil {
		return Input{}, fmt.Errorf("loading registry: %w", err)
	}
	if in.Authors, err = loader.LoadAuthors(cfg.Inputs.Authors); err != nil {
		return Input{}, fmt.Errorf("loading authors: %w", err)
	}
	if cfg.Inputs.Publications != "" {
		if in.Publications, err = loader.LoadPublications(cfg.Inputs.Publications); err != nil {
			return Input{}, fmt.Errorf("loading publications: %w", err)
		}
	}

	for _, r := range []struct {
		kind roster.Kind
		path string
	}{
		{roster.KindTemporary, cfg.Inputs.TemporaryRoster},
		{roster.KindExternal, cfg.Inputs.ExternalRoster},
	} {
		ros, err := loader.LoadRoster(r.kind, r.path)
		if err != nil {
			return Input{}, fmt.Errorf("loading %s roster: %w", r.kind, err)
		}
		if ros != nil {
			in.Rosters = append(in.Rosters, ros)
		}
	}

	if in.Corrections, err = loader.LoadCorrections(cfg.Inputs.Spelling, cfg.Inputs.Metadata, cfg.Inputs.Removals); err != nil {
		return Input{}, fmt.Errorf("loading corrections: %w", err)
	}
	if in.HomonymChoices, err = loader.LoadHomonymChoices(cfg.Inputs.HomonymChoices); err != nil {
		return Input{}, fmt.Errorf("loading homonym choices: %w", err)
	}
	return in, nil
}

// OptionsFromConfig builds run options. Events are logged through logger;
// extra observers (a progress line, say) receive them too.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger, extra ...resolve.Observer) Options {
	opts := Options{
		Names:   names.New(cfg.Names.MinHyphenTokenLength),
		Depth:   cfg.Search.Depth,
		Workers: cfg.Search.Workers,
	}
	if logger != nil {
		opts.Observer = resolve.Observers(append([]resolve.Observer{resolve.LogObserver{Logger: logger}}, extra...)...)
		if len(cfg.Search.TraceNames) > 0 {
			watch := traceKeys(opts.Names, cfg.Search.TraceNames)
			opts.Tracer = match.NameTracer(watch, match.LogTracer(logger))
		}
	} else if len(extra) > 0 {
		opts.Observer = resolve.Observers(extra...)
	}
	return opts
}

// traceKeys turns configured trace names into tracer watch keys. A
// single-token entry watches a last name; anything else a full name.
func traceKeys(n names.Normalizer, entries []string) []string {
	watch := make([]string, 0, len(entries))
	for _, e := range entries {
		if len(strings.Fields(e)) == 1 {
			watch = append(watch, names.LastName(e))
			continue
		}
		watch = append(watch, n.Split(e).Key())
	}
	return watch
}

// Save writes the JSONL outputs and records the run in the run store,
// holding the run lock throughout.
func Save(cfg *config.Config, in Input, out Output) (storage.Run, error) {
	lock, err := storage.AcquireLock(storage.LockPath(cfg.Output.Database))
	if err != nil {
		return storage.Run{}, err
	}
	defer lock.Release()

	err = storage.WriteOutputs(cfg.Output.Dir, storage.Outputs{
		Submitted:    out.Submitted,
		Orphans:      out.Orphans,
		Fingerprints: out.Fingerprints,
		Homonyms:     out.Homonyms,
	})
	if err != nil {
		return storage.Run{}, fmt.Errorf("writing outputs: %w", err)
	}

	db, err := storage.OpenDB(cfg.Output.Database)
	if err != nil {
		return storage.Run{}, err
	}
	defer db.Close()

	run := Summary(in, out)
	err = db.SaveRun(run, storage.RunData{
		Submitted:    out.Submitted,
		Orphans:      out.Orphans,
		Fingerprints: out.Fingerprints,
	})
	if err != nil {
		return storage.Run{}, fmt.Errorf("saving run: %w", err)
	}
	return run, nil
}

// Summary builds the run record for an output.
func Summary(in Input, out Output) storage.Run {
	run := storage.Run{
		ID:             storage.NewRunID(),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		RequestedDepth: out.Depth.Requested,
		EffectiveDepth: out.Depth.Effective,
		Submitted:      len(out.Submitted),
		Orphans:        len(out.Orphans),
		Homonyms:       countRows(out.Homonyms),
	}
	for _, g := range out.Duplicates {
		run.Dropped += len(g.Duplicates)
	}
	if in.Registry != nil {
		run.CorpusYears = in.Registry.Years()
	}
	return run
}
