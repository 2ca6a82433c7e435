package match

import (
	"context"
	"log/slog"

	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
)

// Step names a point in the matching rules.
type Step string

const (
	StepMalformed       Step = "malformed_name"
	StepExact           Step = "exact"
	StepOrphanReduction Step = "orphan_reduction"
	StepInitials        Step = "initials"
	StepOrphan          Step = "orphan"
)

// Event describes one traced step.
type Event struct {
	Step       Step
	Row        reference.AuthorRow
	Year       string
	Candidates int
}

// Tracer receives diagnostic events from the engine.
type Tracer interface {
	Trace(Event)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(Event)

// Trace calls f(ev).
func (f TracerFunc) Trace(ev Event) {
	f(ev)
}

// LogTracer writes events at debug level.
func LogTracer(logger *slog.Logger) Tracer {
	return TracerFunc(func(ev Event) {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "match step",
			slog.String("step", string(ev.Step)),
			slog.String("row", ev.Row.Key().String()),
			slog.String("name", ev.Row.FullNameKey()),
			slog.String("year", ev.Year),
			slog.Int("candidates", ev.Candidates),
		)
	})
}

// NameTracer forwards only events whose row has one of the given full-name
// keys ("LAST INITIALS") or last names.
func NameTracer(watch []string, next Tracer) Tracer {
	set := make(map[string]struct{}, len(watch))
	for _, n := range watch {
		set[n] = struct{}{}
	}
	return TracerFunc(func(ev Event) {
		if _, ok := set[ev.Row.FullNameKey()]; ok {
			next.Trace(ev)
			return
		}
		if _, ok := set[ev.Row.LastName]; ok {
			next.Trace(ev)
		}
	})
}
