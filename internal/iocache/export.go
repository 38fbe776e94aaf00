package iocache

import (
	"errors"
	"fmt"

	"github.com/growthlab/marshalgo/internal/parquet"
)

// ExecuteFetchLogExport performs the actual export of fetch-log data to Parquet files.
func ExecuteFetchLogExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the fetch-log store
	store := Manager.GetFetchStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get fetch-log status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no fetch-log data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total fetch runs: %d\n", status.TotalRuns)
	fmt.Printf("Total source fetch records: %d\n", status.TableSizes["marshal_source_fetches"])

	// Retrieve all fetch runs
	fetchRuns, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve fetch runs: %w", err)
	}

	// Retrieve all per-source outcomes
	sourceFetches, err := store.GetAllSourceFetches()
	if err != nil {
		return fmt.Errorf("failed to retrieve source fetches: %w", err)
	}

	// Convert to Parquet format
	parquetFetchRuns := parquet.ConvertFetchRunRecords(fetchRuns)
	parquetSourceFetches := parquet.ConvertSourceFetchRecords(sourceFetches)

	// Write fetch runs to Parquet
	fetchRunsFile := outputFile + ".fetch_runs.parquet"
	if err := parquet.WriteFetchRunsParquet(parquetFetchRuns, fetchRunsFile); err != nil {
		return fmt.Errorf("failed to write fetch runs: %w", err)
	}
	fmt.Printf("Exported %d fetch runs to: %s\n", len(parquetFetchRuns), fetchRunsFile)

	// Write per-source outcomes to Parquet
	sourceFetchesFile := outputFile + ".source_fetches.parquet"
	if err := parquet.WriteSourceFetchesParquet(parquetSourceFetches, sourceFetchesFile); err != nil {
		return fmt.Errorf("failed to write source fetches: %w", err)
	}
	fmt.Printf("Exported %d source fetch records to: %s\n", len(parquetSourceFetches), sourceFetchesFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
