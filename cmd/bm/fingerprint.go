package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TickyWill/BiblioMeter-sub001/internal/fingerprint"
)

var (
	fpYear        int
	fpFirstAuthor string
	fpTitle       string
	fpISSN        string
	fpDOI         string
)

func init() {
	fingerprintCmd.Flags().IntVar(&fpYear, "year", 0, "Publication year")
	fingerprintCmd.Flags().StringVar(&fpFirstAuthor, "first-author", "", "First author as exported")
	fingerprintCmd.Flags().StringVar(&fpTitle, "title", "", "Publication title")
	fingerprintCmd.Flags().StringVar(&fpISSN, "issn", "", "Journal ISSN")
	fingerprintCmd.Flags().StringVar(&fpDOI, "doi", "", "DOI")
	fingerprintCmd.MarkFlagRequired("year")
	fingerprintCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(fingerprintCmd)
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Compute a publication fingerprint",
	Long: `Compute the fingerprint used to detect the same publication extracted
under different IDs.

Examples:
  bm fingerprint --year 2023 --first-author "Martin J" --title "Deep sea vents" \
      --issn 1234-5678 --doi 10.1/vents`,
	Args: cobra.NoArgs,
	RunE: runFingerprint,
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	fp := fingerprint.Fingerprint(strconv.Itoa(fpYear), fpFirstAuthor, fpTitle, fpISSN, fpDOI)
	if humanOutput {
		fmt.Println(fp)
		return nil
	}
	return outputJSON(map[string]string{"fingerprint": fp})
}
