package match

import (
	"strings"

	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

// Engine runs the matching rules. It holds no mutable state, so one Engine
// may be shared by concurrent callers as long as its Tracer is safe for
// concurrent use.
type Engine struct {
	tracer Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer attaches a diagnostic tracer.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// NewEngine creates a match engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match applies, in order: exact last-name lookup, orphan reduction when
// the exact lookup is empty, then first-name-initials refinement. A result
// with no candidates means the row is an orphan for this year.
func (e *Engine) Match(row reference.AuthorRow, year *staff.Year) Result {
	res := Result{Row: row, Year: year.Name()}

	if row.LastName == "" {
		e.trace(StepMalformed, res, 0)
		return res
	}

	candidates := exactCandidates(row, year)
	if len(candidates) > 0 {
		res.Method = MethodExact
		e.trace(StepExact, res, len(candidates))
	} else {
		candidates = reductionCandidates(row, year)
		if len(candidates) == 0 {
			e.trace(StepOrphan, res, 0)
			return res
		}
		res.Method = MethodOrphanReduction
		e.trace(StepOrphanReduction, res, len(candidates))
	}

	res.Candidates = refineByInitials(row, candidates)
	switch len(res.Candidates) {
	case 0:
		res.Method = MethodNone
		e.trace(StepOrphan, res, 0)
		return res
	case 1:
		res.Homonym = reference.HomonymNone
	default:
		res.Homonym = reference.HomonymFlagged
	}
	e.trace(StepInitials, res, len(res.Candidates))
	return res
}

func (e *Engine) trace(step Step, res Result, n int) {
	if e.tracer == nil {
		return
	}
	e.tracer.Trace(Event{Step: step, Row: res.Row, Year: res.Year, Candidates: n})
}

func exactCandidates(row reference.AuthorRow, year *staff.Year) []Candidate {
	records := year.Lookup(row.LastName)
	out := make([]Candidate, 0, len(records))
	for _, r := range records {
		out = append(out, Candidate{Record: r, FullNameKey: r.FullNameKey()})
	}
	return out
}

// reductionCandidates collects the records whose last name contains, or is
// contained in, the author's last name, both padded with one space on each
// side.
//
// Known limitation: padding does not stop a whole-token match across
// compound names, so "TRAN" matches "TUAN TRAN".
func reductionCandidates(row reference.AuthorRow, year *staff.Year) []Candidate {
	author := pad(row.LastName)
	var out []Candidate
	for _, last := range year.LastNames() {
		if last == "" {
			continue
		}
		registry := pad(last)
		if !strings.Contains(registry, author) && !strings.Contains(author, registry) {
			continue
		}
		for _, r := range year.Lookup(last) {
			out = append(out, Candidate{
				Record:      r,
				FullNameKey: names.FullNameKey(row.LastName, r.Initials),
			})
		}
	}
	return out
}

func refineByInitials(row reference.AuthorRow, candidates []Candidate) []Candidate {
	key := row.FullNameKey()
	var kept []Candidate
	for _, c := range candidates {
		if c.FullNameKey == key {
			kept = append(kept, c)
		}
	}
	return kept
}

func pad(s string) string {
	return " " + s + " "
}
