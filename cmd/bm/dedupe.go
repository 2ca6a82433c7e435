package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TickyWill/BiblioMeter-sub001/internal/fingerprint"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/storage"
)

var (
	dedupeDryRun bool
	dedupeWrite  bool
)

func init() {
	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Show duplicate groups without writing anything")
	dedupeCmd.Flags().BoolVar(&dedupeWrite, "write", false, "Write fingerprints.jsonl for the kept publications")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find publications extracted twice under different IDs",
	Long: `Fingerprint the configured publications table and group duplicates.
The first publication ID in table order is kept.

Examples:
  bm dedupe --dry-run    # Show duplicates without making changes
  bm dedupe --write      # Write the fingerprint table`,
	RunE: runDedupe,
}

// DedupeResult represents the result of a dedupe operation.
type DedupeResult struct {
	DryRun       bool                `json:"dry_run"`
	Publications int                 `json:"publications"`
	Groups       []fingerprint.Group `json:"groups"`
	TotalDupes   int                 `json:"total_duplicates"`
	Written      string              `json:"written,omitempty"`
}

func dedupePublications(pubs []reference.Publication) (*fingerprint.Index, DedupeResult) {
	ix := fingerprint.Deduplicate(pubs)
	res := DedupeResult{
		Publications: len(pubs),
		Groups:       ix.Groups,
		TotalDupes:   ix.DuplicateCount(),
	}
	if res.Groups == nil {
		res.Groups = []fingerprint.Group{}
	}
	return ix, res
}

func runDedupe(cmd *cobra.Command, args []string) error {
	if !dedupeDryRun && !dedupeWrite {
		return fmt.Errorf("must specify either --dry-run or --write")
	}

	cfg := mustLoadConfig()
	loader := storage.NewLoader(cfg.Inputs.Delimiter, nil)
	pubs, err := loader.LoadPublications(cfg.Inputs.Publications)
	if err != nil {
		exitWithError(ExitDataError, "reading publications: %v", err)
	}

	ix, result := dedupePublications(pubs)
	result.DryRun = dedupeDryRun

	if dedupeWrite && !dedupeDryRun {
		lock, err := storage.AcquireLock(storage.LockPath(cfg.Output.Database))
		if err != nil {
			exitWithError(ExitLocked, "%v", err)
		}
		defer lock.Release()

		path := filepath.Join(cfg.Output.Dir, storage.FingerprintsFile)
		if err := storage.WriteJSONL(path, ix.Entries); err != nil {
			exitWithError(ExitError, "writing fingerprints: %v", err)
		}
		result.Written = path
	}

	if !humanOutput {
		return outputJSON(result)
	}

	if result.TotalDupes == 0 {
		fmt.Println("No duplicates found.")
	} else {
		fmt.Printf("Found %d duplicate groups (%d total duplicates):\n\n", len(result.Groups), result.TotalDupes)
		for _, g := range result.Groups {
			fmt.Printf("Fingerprint: %s\n", g.Fingerprint)
			fmt.Printf("  Keep:   %s\n", g.Primary)
			fmt.Printf("  Remove: %s\n\n", strings.Join(g.Duplicates, ", "))
		}
	}
	if result.Written != "" {
		fmt.Printf("Wrote %s\n", result.Written)
	}
	return nil
}
