// Package pipeline runs a full resolution: normalize author names, resolve
// them against the registry, overlay manual corrections, apply homonym
// choices, and drop rows of duplicate publications.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/TickyWill/BiblioMeter-sub001/internal/correction"
	"github.com/TickyWill/BiblioMeter-sub001/internal/fingerprint"
	"github.com/TickyWill/BiblioMeter-sub001/internal/match"
	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
	"github.com/TickyWill/BiblioMeter-sub001/internal/roster"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

// Input is everything one run reads.
type Input struct {
	Registry       *staff.Registry
	Authors        []reference.AuthorRow // raw display names
	Publications   []reference.Publication
	Rosters        []*roster.Roster
	Corrections    correction.Tables
	HomonymChoices []correction.HomonymChoice
}

// Options tunes a run. Zero values select defaults.
type Options struct {
	Names    names.Normalizer
	Depth    int
	Workers  int
	Tracer   match.Tracer
	Observer resolve.Observer
}

// Output is the corrected, deduplicated result of a run.
type Output struct {
	Submitted    []resolve.Submission
	Orphans      []reference.AuthorRow
	Homonyms     []resolve.Submission // flagged submissions left after choices
	Fingerprints []fingerprint.Entry
	Duplicates   []fingerprint.Group
	Depth        resolve.DepthReport
	Corrections  correction.Report
	Choices      correction.HomonymReport
	Rematched    int // orphans claimed after a correction changed their name
	NoRegistry   bool
}

// Run executes the pipeline. When the registry holds no year, Run returns
// an Output with NoRegistry set and nothing else filled in.
func Run(ctx context.Context, in Input, opts Options) (Output, error) {
	rows := reference.Normalize(in.Authors, opts.Names)
	resolver := newResolver(in, opts)

	res, err := resolver.Resolve(ctx, rows)
	if err != nil {
		return Output{}, err
	}
	if res.NoRegistry() {
		return Output{NoRegistry: true, Depth: res.Depth}, nil
	}

	out := Output{Depth: res.Depth}
	applier := correction.NewApplier(in.Corrections)

	// Orphans first: a corrected name gets one more chance against the
	// registry with the same depth.
	orphans, changed := correctOrphans(applier, res.Orphans)
	if len(changed) > 0 {
		second, err := resolver.Resolve(ctx, changed)
		if err != nil {
			return Output{}, fmt.Errorf("re-matching corrected orphans: %w", err)
		}
		out.Rematched = countRows(second.Submitted)
		out.Depth = mergeDepth(out.Depth, second.Depth)
		orphans = append(orphans, second.Orphans...)
		res.Submitted = append(correctSubmitted(applier, res.Submitted), second.Submitted...)
	} else {
		res.Submitted = correctSubmitted(applier, res.Submitted)
	}
	out.Corrections = applier.Report()

	pos := positions(rows)
	sortByPosition(res.Submitted, pos, func(s resolve.Submission) reference.RowKey { return s.Key() })
	sortByPosition(orphans, pos, func(r reference.AuthorRow) reference.RowKey { return r.Key() })

	submitted, choices := correction.ResolveHomonyms(res.Submitted, in.HomonymChoices)
	out.Choices = choices

	ix := fingerprint.Deduplicate(in.Publications)
	out.Submitted = fingerprint.Filter(ix, submitted, func(s resolve.Submission) string { return s.PubID })
	out.Orphans = fingerprint.Filter(ix, orphans, func(r reference.AuthorRow) string { return r.PubID })
	out.Fingerprints = ix.Entries
	out.Duplicates = ix.Groups

	for _, s := range out.Submitted {
		if s.Homonym == reference.HomonymFlagged {
			out.Homonyms = append(out.Homonyms, s)
		}
	}
	return out, nil
}

func newResolver(in Input, opts Options) *resolve.Resolver {
	var engineOpts []match.Option
	if opts.Tracer != nil {
		engineOpts = append(engineOpts, match.WithTracer(opts.Tracer))
	}
	resolveOpts := []resolve.Option{
		resolve.WithDepth(opts.Depth),
		resolve.WithWorkers(opts.Workers),
		resolve.WithEngine(match.NewEngine(engineOpts...)),
		resolve.WithObserver(opts.Observer),
	}
	if len(in.Rosters) > 0 {
		resolveOpts = append(resolveOpts, resolve.WithRosters(roster.NewMerger(in.Rosters...)))
	}
	return resolve.New(in.Registry, resolveOpts...)
}

type orphan struct {
	row     reference.AuthorRow
	changed bool
}

// correctOrphans applies the tables to orphan rows and splits off the rows
// whose name changed.
func correctOrphans(a *correction.Applier, rows []reference.AuthorRow) (kept, changed []reference.AuthorRow) {
	wrapped := make([]orphan, len(rows))
	for i, r := range rows {
		wrapped[i] = orphan{row: r}
	}
	corrected := correction.Apply(a, wrapped,
		func(o orphan) reference.AuthorRow { return o.row },
		func(o orphan, r reference.AuthorRow) orphan {
			return orphan{row: r, changed: r.FullNameKey() != o.row.FullNameKey()}
		},
	)
	for _, o := range corrected {
		if o.changed {
			changed = append(changed, o.row)
		} else {
			kept = append(kept, o.row)
		}
	}
	return kept, changed
}

func correctSubmitted(a *correction.Applier, subs []resolve.Submission) []resolve.Submission {
	return correction.Apply(a, subs,
		func(s resolve.Submission) reference.AuthorRow { return s.AuthorRow },
		func(s resolve.Submission, r reference.AuthorRow) resolve.Submission {
			s.AuthorRow = r
			return s
		},
	)
}

// mergeDepth folds the report of a later pass into an earlier one. A
// publication year short in both passes is recorded once.
func mergeDepth(a, b resolve.DepthReport) resolve.DepthReport {
	a.Effective = max(a.Effective, b.Effective)
	seen := make(map[int]bool, len(a.Shortfalls))
	for _, s := range a.Shortfalls {
		seen[s.PubYear] = true
	}
	for _, s := range b.Shortfalls {
		if !seen[s.PubYear] {
			a.Shortfalls = append(a.Shortfalls, s)
			seen[s.PubYear] = true
		}
	}
	return a
}

// countRows counts distinct author rows among submissions.
func countRows(subs []resolve.Submission) int {
	seen := make(map[reference.RowKey]bool, len(subs))
	for _, s := range subs {
		seen[s.Key()] = true
	}
	return len(seen)
}

func positions(rows []reference.AuthorRow) map[reference.RowKey]int {
	pos := make(map[reference.RowKey]int, len(rows))
	for i, r := range rows {
		if _, ok := pos[r.Key()]; !ok {
			pos[r.Key()] = i
		}
	}
	return pos
}

// sortByPosition restores input row order; ties keep their relative order.
func sortByPosition[T any](items []T, pos map[reference.RowKey]int, key func(T) reference.RowKey) {
	sort.SliceStable(items, func(i, j int) bool {
		return pos[key(items[i])] < pos[key(items[j])]
	})
}
