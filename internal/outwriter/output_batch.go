package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteBatchResults outputs the tally of a batch operation, dispatching based on the output format configured.
func WriteBatchResults(result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, result)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for batch tallies; use the fetchlog export instead")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, result, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// batchStatus renders the per-source outcome column.
func batchStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// writeBatchTable generates and writes the human-readable batch tally table.
func writeBatchTable(w io.Writer, result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Source", "Status", "Rows", "Detections", "Duration", "Error"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxName := getMaxTableNameWidth(cfg)
	var data [][]string
	for i, out := range result.Outcomes {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(out.Name, maxName),
			batchStatus(out.OK),
			strconv.Itoa(out.Rows),
			strconv.Itoa(out.Detections),
			out.Duration.Round(time.Millisecond).String(),
			out.Error,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%d succeeded, %d failed\n", result.Succeeded, result.Failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Batch completed in %v with %d workers. Fetch-log backend: %s\n",
		duration, cfg.Workers, cfg.FetchLogBackend); err != nil {
		return err
	}
	return nil
}

// writeBatchCSV writes the batch tally in CSV format.
func writeBatchCSV(w io.Writer, result *schema.BatchResult) error {
	header := []string{"rank", "source", "status", "rows", "detections", "duration_ms", "error"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, out := range result.Outcomes {
			rec := []string{
				strconv.Itoa(i + 1),
				out.Name,
				batchStatus(out.OK),
				strconv.Itoa(out.Rows),
				strconv.Itoa(out.Detections),
				strconv.FormatInt(out.Duration.Milliseconds(), 10),
				out.Error,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
