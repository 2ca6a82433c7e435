package resolve

import (
	"context"
	"log/slog"
)

// Observer receives coarse progress from the resolver. Calls are made from
// the resolver's goroutine, between year steps.
type Observer interface {
	DepthReduced(pubYear, requested, available int)
	YearStarted(pubYear int, registryYear string, pending int)
	YearFinished(pubYear int, registryYear string, matched, pending int)
	Progress(done, total int)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) DepthReduced(int, int, int)         {}
func (NopObserver) YearStarted(int, string, int)       {}
func (NopObserver) YearFinished(int, string, int, int) {}
func (NopObserver) Progress(int, int)                  {}

// LogObserver reports resolver events through slog.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) DepthReduced(pubYear, requested, available int) {
	o.Logger.Warn("insufficient registry depth",
		slog.Int("pub_year", pubYear),
		slog.Int("requested", requested),
		slog.Int("available", available),
	)
}

func (o LogObserver) YearStarted(pubYear int, registryYear string, pending int) {
	o.Logger.Debug("resolving against registry year",
		slog.Int("pub_year", pubYear),
		slog.String("registry_year", registryYear),
		slog.Int("pending", pending),
	)
}

func (o LogObserver) YearFinished(pubYear int, registryYear string, matched, pending int) {
	o.Logger.Info("registry year done",
		slog.Int("pub_year", pubYear),
		slog.String("registry_year", registryYear),
		slog.Int("matched", matched),
		slog.Int("pending", pending),
	)
}

func (o LogObserver) Progress(done, total int) {
	o.Logger.Log(context.Background(), slog.LevelDebug, "progress",
		slog.Int("done", done),
		slog.Int("total", total),
	)
}

// multiObserver fans events out to several observers.
type multiObserver []Observer

// Observers combines observers; events reach each one in order.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

func (m multiObserver) DepthReduced(pubYear, requested, available int) {
	for _, o := range m {
		o.DepthReduced(pubYear, requested, available)
	}
}

func (m multiObserver) YearStarted(pubYear int, registryYear string, pending int) {
	for _, o := range m {
		o.YearStarted(pubYear, registryYear, pending)
	}
}

func (m multiObserver) YearFinished(pubYear int, registryYear string, matched, pending int) {
	for _, o := range m {
		o.YearFinished(pubYear, registryYear, matched, pending)
	}
}

func (m multiObserver) Progress(done, total int) {
	for _, o := range m {
		o.Progress(done, total)
	}
}
