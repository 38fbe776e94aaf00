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

// WriteLightcurveResults outputs the photometry of one source, dispatching based on the output format configured.
func WriteLightcurveResults(lc *schema.Lightcurve, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, lc)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLightcurveCSV(w, lc)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeLightcurveParquet(lc, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLightcurveTable(w, lc, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// WriteFitTableResults outputs a fitting-ready photometry table, dispatching based on the output format configured.
func WriteFitTableResults(ft *schema.FitTable, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ft)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFitTableCSV(w, ft)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for fitting tables")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFitTableTable(w, ft)
		}, "Wrote table")
	}
	return nil
}

// writeLightcurveParquet exports one lightcurve as Parquet. Parquet is a
// binary format, so an output file is required rather than defaulting to
// stdout.
func writeLightcurveParquet(lc *schema.Lightcurve, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	points := parquet.ConvertLightcurve(lc)
	if err := parquet.WritePhotometryParquet(points, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}

// writeLightcurveTable generates and writes the human-readable photometry table.
func writeLightcurveTable(w io.Writer, lc *schema.Lightcurve, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Date", "JD", "Filter", "Instrument", "Mag", "Sigma", "LimMag", "Label"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	labelFn := contract.GetPlainRowLabel
	if cfg.UseColors {
		labelFn = contract.GetColorRowLabel
	}

	detections := 0
	var data [][]string
	for i, row := range lc.Rows {
		if row.IsDetection() {
			detections++
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			row.Date,
			formatJD(row.JDObs),
			row.Filter,
			row.Instrument,
			formatMag(row.MagPSF),
			formatMag(row.SigmaMagPSF),
			formatMag(row.LimMag),
			labelFn(row.MagPSF),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d rows for %s (%d detections, %d limits)\n",
		len(lc.Rows), lc.Name, detections, len(lc.Rows)-detections); err != nil {
		return err
	}
	meta := fmt.Sprintf("RA %s Dec %s", schema.FormatCoord(lc.RA), schema.FormatCoord(lc.Dec))
	if lc.Classification != "" {
		meta += " " + lc.Classification
	}
	if lc.Redshift != nil {
		meta += " z=" + formatRedshift(lc.Redshift)
	}
	if _, err := fmt.Fprintf(w, "%s. Fetch completed in %v\n", meta, duration); err != nil {
		return err
	}
	return nil
}

// writeFitTableTable generates and writes the human-readable fitting table.
func writeFitTableTable(w io.Writer, ft *schema.FitTable) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "MJD", "Band", "Flux", "FluxErr", "ZP", "ZPSys"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, p := range ft.Points {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			formatJD(p.MJD),
			p.Band,
			formatFlux(p.Flux),
			formatFlux(p.FluxErr),
			formatMag(p.ZP),
			p.ZPSys,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	summary := fmt.Sprintf("Fitting table for %s with %d points", ft.Name, len(ft.Points))
	if ft.Redshift != nil {
		summary += " at z=" + formatRedshift(ft.Redshift)
	}
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	return nil
}

// writeLightcurveCSV writes the photometry rows in CSV format.
func writeLightcurveCSV(w io.Writer, lc *schema.Lightcurve) error {
	header := []string{"name", "date", "jdobs", "filter", "instrument", "magpsf", "sigmamagpsf", "limmag", "label"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, row := range lc.Rows {
			rec := []string{
				lc.Name,
				row.Date,
				formatJD(row.JDObs),
				row.Filter,
				row.Instrument,
				formatMag(row.MagPSF),
				formatMag(row.SigmaMagPSF),
				formatMag(row.LimMag),
				contract.GetPlainRowLabel(row.MagPSF),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFitTableCSV writes the fitting table in CSV format.
func writeFitTableCSV(w io.Writer, ft *schema.FitTable) error {
	header := []string{"mjd", "band", "flux", "fluxerr", "zp", "zpsys"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, p := range ft.Points {
			rec := []string{
				formatJD(p.MJD),
				p.Band,
				formatFlux(p.Flux),
				formatFlux(p.FluxErr),
				formatMag(p.ZP),
				p.ZPSys,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
