package cmd

import (
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/spf13/cobra"
)

// candidatesCmd queries the scanning page over the configured time window.
var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Query the scanning page of a science program.",
	Long: `Query the scanning page of the configured program over a time window.

The portal caps a single response at about 200 rows, so the window is cut into
slices of --slice-step, queried concurrently with --workers, and failed slices
are retried up to --max-attempts rounds. With --raise-on-fail no, slices still
broken after all rounds are dropped with a warning instead of failing the run.

Examples:
  # Last 30 days in 5-day slices (defaults)
  marshalgo candidates --program "Cosmology"

  # A specific window with more workers
  marshalgo candidates --start 2026-02-01 --end 2026-03-01 --workers 24

  # Include everything on the scanning page
  marshalgo candidates --show-saved all

  # Columnar export for a notebook
  marshalgo candidates --output parquet --output-file candidates.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		start := time.Now()
		candidates, err := session.GetCandidates(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot query candidates", err)
		}
		if err := writer.WriteCandidates(candidates, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write candidate results", err)
		}
	},
}

// candidatesSaveCmd saves unsaved scanning-page candidates into the program.
var candidatesSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save unsaved scanning-page candidates into the program.",
	Long: `Query the scanning page over the configured window and save every
candidate that is not yet part of the program. Individual failures do not
abort the batch; the final tally reports them.

Examples:
  marshalgo candidates save --start "1 week ago"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		start := time.Now()
		candidates, err := session.GetCandidates(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot query candidates", err)
		}

		var unsaved []schema.Record
		for _, cand := range candidates {
			if cand.String("name") == "" {
				unsaved = append(unsaved, cand)
			}
		}

		result, err := session.SaveSources(rootCtx, unsaved)
		if err != nil {
			contract.LogFatal("Cannot save candidates", err)
		}
		if err := writer.WriteBatch(result, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write batch results", err)
		}
	},
}
