package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/TickyWill/BiblioMeter-sub001/internal/correction"
	"github.com/TickyWill/BiblioMeter-sub001/internal/pipeline"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
	"github.com/TickyWill/BiblioMeter-sub001/internal/storage"
)

var (
	resolveDepth   int
	resolveWorkers int
	resolveNoSave  bool
)

func init() {
	resolveCmd.Flags().IntVar(&resolveDepth, "depth", 0, "Registry years searched per publication year (default from config)")
	resolveCmd.Flags().IntVar(&resolveWorkers, "workers", 0, "Goroutines matching rows within a year (default from config)")
	resolveCmd.Flags().BoolVar(&resolveNoSave, "no-save", false, "Print the summary without writing outputs or recording the run")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Attribute author rows to staff members",
	Long: `Resolve the configured author rows against the staff registry.

Writes submitted.jsonl, orphans.jsonl, homonyms.jsonl and fingerprints.jsonl
to the output directory and records the run in the run database.

Examples:
  bm resolve
  bm resolve --depth 3 --human
  bm resolve --no-save --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

// ResolveSummary is the response for the resolve command.
type ResolveSummary struct {
	RunID       string                   `json:"run_id,omitempty"`
	Submitted   int                      `json:"submitted"`
	Orphans     int                      `json:"orphans"`
	Homonyms    int                      `json:"homonyms"`
	Rematched   int                      `json:"rematched"`
	Dropped     int                      `json:"dropped_publications"`
	Depth       resolve.DepthReport      `json:"depth"`
	Corrections correction.Report        `json:"corrections"`
	Choices     correction.HomonymReport `json:"homonym_choices"`
	OutputDir   string                   `json:"output_dir,omitempty"`
	Elapsed     string                   `json:"elapsed"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if resolveDepth > 0 {
		cfg.Search.Depth = resolveDepth
	}
	if resolveWorkers > 0 {
		cfg.Search.Workers = resolveWorkers
	}
	if err := cfg.ValidateInputs(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	logger := mustLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	in, err := pipeline.Load(cfg)
	if err != nil {
		exitWithError(ExitDataError, "loading inputs: %v", err)
	}

	var extra []resolve.Observer
	if humanOutput && stderrIsTerminal() {
		extra = append(extra, &progressLine{w: os.Stderr})
	}
	out, err := pipeline.Run(ctx, in, pipeline.OptionsFromConfig(cfg, logger, extra...))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if out.NoRegistry {
		exitWithError(ExitNoRegistry, "%v in %s", resolve.ErrNoRegistryYears, cfg.Inputs.RegistryDir)
	}
	logCorrections(logger, out.Corrections)

	summary := summarize(out)
	if !resolveNoSave {
		run, err := pipeline.Save(cfg, in, out)
		if err != nil {
			if errors.Is(err, storage.ErrLocked) {
				exitWithError(ExitLocked, "%v", err)
			}
			exitWithError(ExitError, "%v", err)
		}
		summary.RunID = run.ID
		summary.OutputDir = cfg.Output.Dir
	}
	summary.Elapsed = formatDuration(time.Since(start))

	if humanOutput {
		printResolveSummary(os.Stdout, summary)
		return nil
	}
	return outputJSON(summary)
}

func summarize(out pipeline.Output) ResolveSummary {
	s := ResolveSummary{
		Submitted:   len(out.Submitted),
		Orphans:     len(out.Orphans),
		Rematched:   out.Rematched,
		Depth:       out.Depth,
		Corrections: out.Corrections,
		Choices:     out.Choices,
	}
	flagged := make(map[string]bool)
	for _, h := range out.Homonyms {
		flagged[h.Key().String()] = true
	}
	s.Homonyms = len(flagged)
	for _, g := range out.Duplicates {
		s.Dropped += len(g.Duplicates)
	}
	return s
}

func printResolveSummary(w io.Writer, s ResolveSummary) {
	rows := [][]string{
		{"submitted", strconv.Itoa(s.Submitted)},
		{"orphans", strconv.Itoa(s.Orphans)},
		{"homonyms", strconv.Itoa(s.Homonyms)},
		{"re-matched after correction", strconv.Itoa(s.Rematched)},
		{"duplicate publications dropped", strconv.Itoa(s.Dropped)},
		{"depth (requested/effective)", fmt.Sprintf("%d/%d", s.Depth.Requested, s.Depth.Effective)},
	}
	fmt.Fprintln(w, renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	for _, sf := range s.Depth.Shortfalls {
		fmt.Fprintf(w, "warning: publication year %d searched %d registry year(s) only\n", sf.PubYear, sf.Available)
	}
	if s.RunID != "" {
		fmt.Fprintf(w, "\nRun %s written to %s (%s)\n", s.RunID, s.OutputDir, s.Elapsed)
	} else {
		fmt.Fprintf(w, "\nNot saved (%s)\n", s.Elapsed)
	}
}

// progressLine redraws a single progress line on a terminal.
type progressLine struct {
	resolve.NopObserver
	w io.Writer
}

func (p *progressLine) Progress(done, total int) {
	fmt.Fprintf(p.w, "\rresolving: %d/%d year steps", done, total)
	if done == total {
		fmt.Fprintln(p.w)
	}
}
