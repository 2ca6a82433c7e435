package main

import (
	"log/slog"

	"github.com/TickyWill/BiblioMeter-sub001/internal/correction"
)

// logCorrections reports correction keys that matched no row.
func logCorrections(logger *slog.Logger, r correction.Report) {
	for _, t := range []struct {
		name   string
		report correction.TableReport
	}{
		{"spelling", r.Spelling},
		{"metadata", r.Metadata},
		{"removal", r.Removal},
	} {
		if t.report.Entries == 0 {
			continue
		}
		logger.Info("corrections applied",
			slog.String("table", t.name),
			slog.Int("entries", t.report.Entries),
			slog.Int("applied", t.report.Applied),
		)
		for _, key := range t.report.Unused {
			logger.Warn("correction key not found", slog.String("table", t.name), slog.String("key", key))
		}
	}
}
