package resolve

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/TickyWill/BiblioMeter-sub001/internal/match"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/roster"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

// Resolver partitions author rows into submitted and orphan sets.
//
// Rows are grouped by publication year. Each group first passes through the
// roster merger, then walks the registry years at or before its publication
// year, most recent first, up to the configured depth. Rows matched in a
// year are committed; the rest move on to the next older year. Rows still
// pending when the sequence ends are orphans.
type Resolver struct {
	registry *staff.Registry
	engine   *match.Engine
	merger   *roster.Merger
	observer Observer
	depth    int
	workers  int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDepth sets the number of registry years searched per publication year.
func WithDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.depth = depth
		}
	}
}

// WithWorkers sets how many goroutines match rows within one year.
// 1 matches sequentially.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithEngine replaces the default match engine.
func WithEngine(e *match.Engine) Option {
	return func(r *Resolver) {
		r.engine = e
	}
}

// WithRosters sets the supplementary rosters applied before the registry search.
func WithRosters(m *roster.Merger) Option {
	return func(r *Resolver) {
		r.merger = m
	}
}

// WithObserver attaches a progress observer.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// New creates a resolver over a registry.
func New(registry *staff.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry: registry,
		engine:   match.NewEngine(),
		observer: NopObserver{},
		depth:    DefaultDepth,
		workers:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// pendingRow remembers a row's position in the caller's input so results
// can be re-joined in input order.
type pendingRow struct {
	pos int
	row reference.AuthorRow
}

type submission struct {
	pos int
	sub Submission
}

// yearGroup is the set of pending rows sharing a publication year, with the
// registry years it will walk.
type yearGroup struct {
	pubYear  int
	sequence []string
	rows     []pendingRow
}

// Resolve runs the search. Cancellation is checked between year steps; a
// cancelled context returns its error and no partial result.
//
// If the registry holds no year at all, Resolve returns the empty result
// (see Result.NoRegistry) and a nil error.
func (r *Resolver) Resolve(ctx context.Context, rows []reference.AuthorRow) (Result, error) {
	result := Result{Depth: DepthReport{Requested: r.depth}}
	if r.registry == nil || r.registry.Len() == 0 {
		result.noRegistry = true
		return result, nil
	}

	var subs []submission
	pending := make([]pendingRow, len(rows))
	for i, row := range rows {
		pending[i] = pendingRow{pos: i, row: row}
	}

	if r.merger != nil {
		subs, pending = r.mergeRosters(pending)
	}

	groups := r.plan(pending, &result.Depth)

	total := 0
	for _, g := range groups {
		total += len(g.sequence)
	}
	done := 0

	var orphans []pendingRow
	for _, g := range groups {
		left := g.rows
		for _, year := range g.sequence {
			if err := ctx.Err(); err != nil {
				return Result{}, fmt.Errorf("resolving authors: %w", err)
			}
			if len(left) == 0 {
				done++
				r.observer.Progress(done, total)
				continue
			}

			snapshot, _ := r.registry.Year(year)
			r.observer.YearStarted(g.pubYear, year, len(left))

			results, err := r.matchAll(ctx, left, snapshot)
			if err != nil {
				return Result{}, fmt.Errorf("matching against %s: %w", year, err)
			}

			var next []pendingRow
			matched := 0
			for i, res := range results {
				if !res.Matched() {
					next = append(next, left[i])
					continue
				}
				matched++
				subs = append(subs, fromMatch(left[i].pos, res)...)
			}
			left = next

			done++
			r.observer.YearFinished(g.pubYear, year, matched, len(left))
			r.observer.Progress(done, total)
		}
		orphans = append(orphans, left...)
	}

	sort.SliceStable(subs, func(i, j int) bool { return subs[i].pos < subs[j].pos })
	sort.SliceStable(orphans, func(i, j int) bool { return orphans[i].pos < orphans[j].pos })

	result.Submitted = make([]Submission, len(subs))
	for i, s := range subs {
		result.Submitted[i] = s.sub
	}
	result.Orphans = make([]reference.AuthorRow, len(orphans))
	for i, o := range orphans {
		result.Orphans[i] = o.row
	}
	return result, nil
}

// plan groups pending rows by publication year (most recent first) and
// trims each group's year sequence to the effective depth.
func (r *Resolver) plan(pending []pendingRow, depth *DepthReport) []yearGroup {
	byYear := make(map[int]*yearGroup)
	var order []int
	for _, p := range pending {
		g, ok := byYear[p.row.PubYear]
		if !ok {
			g = &yearGroup{pubYear: p.row.PubYear}
			byYear[p.row.PubYear] = g
			order = append(order, p.row.PubYear)
		}
		g.rows = append(g.rows, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(order)))

	groups := make([]yearGroup, 0, len(order))
	for _, year := range order {
		g := byYear[year]
		seq := r.registry.SearchSequence(year)
		if len(seq) < r.depth {
			depth.Shortfalls = append(depth.Shortfalls, Shortfall{PubYear: year, Available: len(seq)})
			r.observer.DepthReduced(year, r.depth, len(seq))
		} else {
			seq = seq[:r.depth]
		}
		if len(seq) > depth.Effective {
			depth.Effective = len(seq)
		}
		g.sequence = seq
		groups = append(groups, *g)
	}
	return groups
}

// matchAll runs the engine for every row against one year. Each worker
// writes only its own slice positions, so results come back in row order.
func (r *Resolver) matchAll(ctx context.Context, rows []pendingRow, year *staff.Year) ([]match.Result, error) {
	results := make([]match.Result, len(rows))
	if r.workers <= 1 || len(rows) < 2 {
		for i, p := range rows {
			results[i] = r.engine.Match(p.row, year)
		}
		return results, nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	chunk := (len(rows) + r.workers - 1) / r.workers
	for start := 0; start < len(rows); start += chunk {
		start, end := start, min(start+chunk, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = r.engine.Match(rows[i].row, year)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Resolver) mergeRosters(pending []pendingRow) ([]submission, []pendingRow) {
	rows := make([]reference.AuthorRow, len(pending))
	for i, p := range pending {
		rows[i] = p.row
	}
	matched, _ := r.merger.Merge(rows)

	claimed := make(map[int]bool, len(matched))
	var subs []submission
	mi := 0
	for _, p := range pending {
		if mi >= len(matched) || matched[mi].Row.Key() != p.row.Key() {
			continue
		}
		subs = append(subs, fromRoster(p.pos, matched[mi])...)
		claimed[p.pos] = true
		mi++
	}

	left := make([]pendingRow, 0, len(pending)-len(claimed))
	for _, p := range pending {
		if !claimed[p.pos] {
			left = append(left, p)
		}
	}
	return subs, left
}

func fromMatch(pos int, res match.Result) []submission {
	method := MethodExact
	if res.Method == match.MethodOrphanReduction {
		method = MethodOrphanReduction
	}
	row := res.Row
	row.Homonym = res.Homonym

	out := make([]submission, len(res.Candidates))
	for i, c := range res.Candidates {
		out[i] = submission{pos: pos, sub: Submission{
			AuthorRow: row,
			Employee:  c.Record,
			Year:      res.Year,
			Method:    method,
		}}
	}
	return out
}

func fromRoster(pos int, m roster.Match) []submission {
	method := MethodRosterTemporary
	if m.Kind == roster.KindExternal {
		method = MethodRosterExternal
	}
	row := m.Row
	row.Homonym = m.Homonym

	out := make([]submission, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = submission{pos: pos, sub: Submission{
			AuthorRow: row,
			Employee: staff.Record{
				StaffID:    e.Attributes["staff_id"],
				LastName:   e.LastName,
				Initials:   e.Initials,
				Attributes: e.Attributes,
			},
			Method: method,
		}}
	}
	return out
}
