package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// formatMag renders a magnitude or magnitude uncertainty for display.
func formatMag(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// formatJD renders a Julian or modified Julian date for display.
func formatJD(v float64) string {
	return fmt.Sprintf("%.5f", v)
}

// formatFlux renders a flux value on the fitting zeropoint scale.
func formatFlux(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

// formatRedshift renders an optional redshift, blank when unset.
func formatRedshift(z *float64) string {
	if z == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *z)
}

// recordSaved reports whether a scanning-page record has already been saved
// to the program. The Marshal assigns a ZTF name on save, so a non-empty name
// is the marker; unsaved candidates only carry a candid.
func recordSaved(r schema.Record) bool {
	return r.String("name") != ""
}
