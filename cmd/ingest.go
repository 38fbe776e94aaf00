package cmd

import (
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/spf13/cobra"
)

// ingestCmd ingests alert-archive detections by avro id.
var ingestCmd = &cobra.Command{
	Use:   "ingest <avro-id>...",
	Short: "Ingest alert-archive detections into the program by avro id.",
	Long: `Request ingestion of one or more alert-archive detections by avro id.

The portal acknowledges ingestion requests without confirming that the
candidate actually landed; with --verify the scanning page is re-queried and
ids missing from it are demoted to failures in the tally.

Examples:
  marshalgo ingest 231501501
  marshalgo ingest 231501501 231501502 --verify`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		session, err := newSession()
		if err != nil {
			contract.LogFatal("Cannot open program session", err)
		}

		start := time.Now()
		result, err := session.IngestAvroIDs(rootCtx, args, input.Verify)
		if err != nil {
			contract.LogFatal("Cannot ingest avro ids", err)
		}
		if err := writer.WriteBatch(result, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write batch results", err)
		}
	},
}
