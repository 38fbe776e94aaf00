package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCommentResults outputs the annotations of one source, dispatching based on the output format configured.
func WriteCommentResults(name string, comments []schema.Comment, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, comments)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommentCSV(w, comments)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for comments")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommentTable(w, name, comments)
		}, "Wrote table")
	}
	return nil
}

// WriteRetrievedResults outputs key/value pairs pulled out of a source record.
func WriteRetrievedResults(name string, values map[string]any, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, values)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRetrievedCSV(w, values)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for retrieved values")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRetrievedTable(w, name, values)
		}, "Wrote table")
	}
	return nil
}

// writeCommentTable generates and writes the human-readable comment table.
func writeCommentTable(w io.Writer, name string, comments []schema.Comment) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Type", "Author", "Date", "Comment"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range comments {
		data = append(data, []string{
			strconv.FormatInt(c.ID, 10),
			c.Type,
			c.Author,
			c.Date,
			c.Text,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d comments for %s\n", len(comments), name); err != nil {
		return err
	}
	return nil
}

// writeCommentCSV writes comments in CSV format.
func writeCommentCSV(w io.Writer, comments []schema.Comment) error {
	header := []string{"id", "type", "author", "date", "comment"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, c := range comments {
			rec := []string{
				strconv.FormatInt(c.ID, 10),
				c.Type,
				c.Author,
				c.Date,
				c.Text,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// sortedKeys returns the keys of a retrieved-value map in stable order.
func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeRetrievedTable generates and writes the human-readable key/value table.
func writeRetrievedTable(w io.Writer, name string, values map[string]any) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Value"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, k := range sortedKeys(values) {
		data = append(data, []string{k, fmt.Sprintf("%v", values[k])})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d fields for %s\n", len(values), name); err != nil {
		return err
	}
	return nil
}

// writeRetrievedCSV writes retrieved key/value pairs in CSV format.
func writeRetrievedCSV(w io.Writer, values map[string]any) error {
	header := []string{"key", "value"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, k := range sortedKeys(values) {
			if err := csvWriter.Write([]string{k, fmt.Sprintf("%v", values[k])}); err != nil {
				return err
			}
		}
		return nil
	})
}
