package cmd

import (
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/spf13/cobra"
)

// lightcurveCmd groups the photometry operations.
var lightcurveCmd = &cobra.Command{
	Use:   "lightcurve",
	Short: "Download and convert source photometry.",
	Long: `Download the photometry of saved sources.

Lightcurves are deduplicated per Julian date and cached in the response cache,
so repeated fetches of the same source within a day hit the local store.

Subcommands:
  fetch - Download the photometry of one source
  fit   - Convert the photometry into a fitting-ready flux table
  all   - Download the photometry of every saved source

Examples:
  marshalgo lightcurve fetch ZTF20aaelulu
  marshalgo lightcurve fit ZTF20aaelulu --output csv
  marshalgo lightcurve all --workers 24`,
}

// lightcurveFetchCmd downloads the photometry of one source.
var lightcurveFetchCmd = &cobra.Command{
	Use:   "fetch <name>",
	Short: "Download the deduplicated photometry of one source.",
	Long: `Download, parse and deduplicate the photometry of one saved source.

Rows at the same Julian date collapse to one row per distinct detection
magnitude; non-detections survive only when no detection exists at that date.

Examples:
  marshalgo lightcurve fetch ZTF20aaelulu
  marshalgo lightcurve fetch ZTF20aaelulu --output parquet --output-file lc.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		start := time.Now()
		lc, err := session.GetLightcurve(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot fetch lightcurve", err)
		}
		if err := writer.WriteLightcurve(lc, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write lightcurve", err)
		}
	},
}

// lightcurveFitCmd converts the photometry into a fitting table.
var lightcurveFitCmd = &cobra.Command{
	Use:   "fit <name>",
	Short: "Convert the photometry of one source into a fitting table.",
	Long: `Convert the deduplicated photometry of one source into flux space on a
fixed zeropoint of 25. Detections become flux measurements, non-detections
become zero flux with a 5-sigma upper-limit error, and rows whose
instrument+filter pair has no registered bandpass are dropped with a warning.

Examples:
  marshalgo lightcurve fit ZTF20aaelulu
  marshalgo lightcurve fit ZTF20aaelulu --output csv --output-file fit.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		ft, err := session.FitTable(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot build fitting table", err)
		}
		if err := writer.WriteFitTable(ft, cfg); err != nil {
			contract.LogFatal("Cannot write fitting table", err)
		}
	},
}

// lightcurveAllCmd downloads the photometry of every saved source.
var lightcurveAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Download the photometry of every saved source.",
	Long: `Fan the photometry download of every saved source across the worker
pool. Individual failures do not abort the batch; the final tally reports
them. With a fetchlog backend configured, the run and its per-source outcomes
are recorded for later export.

Examples:
  marshalgo lightcurve all --workers 24
  marshalgo lightcurve all --fetchlog-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		start := time.Now()
		result, err := session.FetchAllLightcurves(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot fetch lightcurves", err)
		}
		if err := writer.WriteBatch(result, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write batch results", err)
		}
	},
}
