package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/internal/parquet"
	"github.com/growthlab/marshalgo/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSourceResults outputs saved-source records, dispatching based on the output format configured.
func WriteSourceResults(sources []schema.Record, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, sources)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSourceCSV(w, sources)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeRecordsParquet(sources, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSourceTable(w, sources, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// WriteCandidateResults outputs scanning-page candidates, dispatching based on the output format configured.
func WriteCandidateResults(candidates []schema.Record, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, candidates)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCandidateCSV(w, candidates)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeRecordsParquet(candidates, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCandidateTable(w, candidates, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeRecordsParquet exports records as Parquet. Parquet is a binary format,
// so an output file is required rather than defaulting to stdout.
func writeRecordsParquet(records []schema.Record, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := parquet.ConvertRecords(records)
	if err := parquet.WriteCandidatesParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}

// writeSourceTable generates and writes the human-readable saved-source table.
func writeSourceTable(w io.Writer, sources []schema.Record, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Name", "RA", "Dec", "Class", "Redshift", "Created"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxName := getMaxTableNameWidth(cfg)
	var data [][]string
	for i, src := range sources {
		ra, _ := src.Float("ra")
		dec, _ := src.Float("dec")
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(src.String("name"), maxName),
			schema.FormatCoord(ra),
			schema.FormatCoord(dec),
			src.String("classification"),
			src.String("redshift"),
			src.String("creationdate"),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	classified := 0
	for _, src := range sources {
		if src.String("classification") != "" {
			classified++
		}
	}
	if _, err := fmt.Fprintf(w, "Showing %d saved sources (%d classified)\n", len(sources), classified); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Query completed in %v. Program: %s\n", duration, cfg.Program); err != nil {
		return err
	}
	return nil
}

// writeCandidateTable generates and writes the human-readable candidate table.
func writeCandidateTable(w io.Writer, candidates []schema.Record, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "ID", "RA", "Dec", "Label"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	labelFn := contract.GetPlainSavedLabel
	if cfg.UseColors {
		labelFn = contract.GetColorSavedLabel
	}

	maxName := getMaxTableNameWidth(cfg)
	saved := 0
	var data [][]string
	for i, cand := range candidates {
		if recordSaved(cand) {
			saved++
		}
		ra, _ := cand.Float("ra")
		dec, _ := cand.Float("dec")
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(cand.ID(), maxName),
			schema.FormatCoord(ra),
			schema.FormatCoord(dec),
			labelFn(recordSaved(cand)),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d candidates (%d saved, %d unsaved)\n", len(candidates), saved, len(candidates)-saved); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Query completed in %v with %d workers. Window: %s to %s\n",
		duration, cfg.Workers,
		cfg.StartTime.Format(contract.DateTimeFormat), cfg.EndTime.Format(contract.DateTimeFormat)); err != nil {
		return err
	}
	return nil
}

// writeSourceCSV writes saved-source records in CSV format.
func writeSourceCSV(w io.Writer, sources []schema.Record) error {
	header := []string{"rank", "name", "ra", "dec", "classification", "redshift", "creationdate", "lastmodified"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, src := range sources {
			ra, _ := src.Float("ra")
			dec, _ := src.Float("dec")
			rec := []string{
				strconv.Itoa(i + 1),
				src.String("name"),
				schema.FormatCoord(ra),
				schema.FormatCoord(dec),
				src.String("classification"),
				src.String("redshift"),
				src.String("creationdate"),
				src.String("lastmodified"),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCandidateCSV writes scanning-page candidates in CSV format.
func writeCandidateCSV(w io.Writer, candidates []schema.Record) error {
	header := []string{"rank", "id", "name", "candid", "ra", "dec", "label"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, cand := range candidates {
			ra, _ := cand.Float("ra")
			dec, _ := cand.Float("dec")
			rec := []string{
				strconv.Itoa(i + 1),
				cand.ID(),
				cand.String("name"),
				cand.String("candid"),
				schema.FormatCoord(ra),
				schema.FormatCoord(dec),
				contract.GetPlainSavedLabel(recordSaved(cand)),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
