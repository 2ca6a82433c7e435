package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TickyWill/BiblioMeter-sub001/internal/storage"
)

var runsLimit int

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list (0 for all)")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded resolution runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its submissions per staff member",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

// RunDetail is the response for runs show.
type RunDetail struct {
	storage.Run
	StaffCounts map[string]int `json:"staff_counts"`
}

func mustOpenRunDB() *storage.DB {
	cfg := mustLoadConfig()
	db, err := storage.OpenDB(cfg.Output.Database)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

func runRuns(cmd *cobra.Command, args []string) error {
	db := mustOpenRunDB()
	defer db.Close()

	runs, err := db.ListRuns(runsLimit)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if runs == nil {
		runs = []storage.Run{}
	}

	if !humanOutput {
		return outputJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	fmt.Println(renderTable(
		[]string{"ID", "Created", "Years", "Depth", "Submitted", "Orphans", "Homonyms", "Dropped"},
		runRows(runs),
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func runRows(runs []storage.Run) [][]string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID[:min(8, len(r.ID))],
			r.CreatedAt.Local().Format(time.DateTime),
			truncateString(strings.Join(r.CorpusYears, ","), 24),
			fmt.Sprintf("%d/%d", r.EffectiveDepth, r.RequestedDepth),
			strconv.Itoa(r.Submitted),
			strconv.Itoa(r.Orphans),
			strconv.Itoa(r.Homonyms),
			strconv.Itoa(r.Dropped),
		}
	}
	return rows
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	db := mustOpenRunDB()
	defer db.Close()

	run, err := db.GetRun(args[0])
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "%v", err)
	}
	counts, err := db.RunSubmittedStaff(run.ID)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if !humanOutput {
		return outputJSON(RunDetail{Run: run, StaffCounts: counts})
	}

	fmt.Printf("Run %s (%s)\n", run.ID, run.CreatedAt.Local().Format(time.DateTime))
	fmt.Printf("  Years: %s\n", strings.Join(run.CorpusYears, ", "))
	fmt.Printf("  Submitted %d, orphans %d, homonyms %d, dropped %d\n\n", run.Submitted, run.Orphans, run.Homonyms, run.Dropped)

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{id, strconv.Itoa(counts[id])}
	}
	fmt.Println(renderTable([]string{"Staff ID", "Rows"}, rows, []columnAlignment{alignLeft, alignRight}))
	return nil
}
