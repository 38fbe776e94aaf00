// Package parquet provides data structures and functions for exporting marshal
// fetch-log data and photometry to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/growthlab/marshalgo/schema"
	"github.com/parquet-go/parquet-go"
)

// FetchRun represents a single batch fetch run with metadata.
// This struct maps to the marshal_fetch_runs database table.
type FetchRun struct {
	// RunID is the unique identifier for this fetch run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Succeeded is the number of sources fetched successfully
	Succeeded int32 `parquet:"succeeded,snappy"`

	// Failed is the number of sources that could not be fetched
	Failed int32 `parquet:"failed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SourceFetch represents the outcome of fetching one source in a run.
// This struct maps to the marshal_source_fetches database table.
type SourceFetch struct {
	// RunID references the parent fetch run
	RunID int64 `parquet:"run_id,snappy"`

	// SourceName is the ZTF name of the source
	SourceName string `parquet:"source_name,snappy"`

	// FetchTime is when this source was fetched (stored as TIMESTAMP with nanosecond precision)
	FetchTime time.Time `parquet:"fetch_time,snappy"`

	// OK reports whether the fetch succeeded
	OK bool `parquet:"ok,snappy"`

	// Rows is the number of photometry rows downloaded
	Rows int32 `parquet:"row_count,snappy"`

	// Detections is the number of rows below the non-detection sentinel
	Detections int32 `parquet:"detections,snappy"`

	// Error carries the failure description (nullable)
	Error *string `parquet:"error,optional,snappy"`
}

// PhotometryPoint represents one lightcurve row for columnar export.
type PhotometryPoint struct {
	// SourceName is the ZTF name of the source
	SourceName string `parquet:"source_name,snappy"`

	// JDObs is the Julian date of the observation
	JDObs float64 `parquet:"jdobs,snappy"`

	// Filter is the filter name (g, r, i, ...)
	Filter string `parquet:"filter,snappy"`

	// Instrument is the telescope+instrument pair (e.g. P48+ZTF)
	Instrument string `parquet:"instrument,snappy"`

	// MagPSF is the PSF magnitude; values at or above the sentinel are upper limits
	MagPSF float64 `parquet:"magpsf,snappy"`

	// SigmaMagPSF is the magnitude uncertainty
	SigmaMagPSF float64 `parquet:"sigmamagpsf,snappy"`

	// LimMag is the limiting magnitude of the exposure
	LimMag float64 `parquet:"limmag,snappy"`

	// IsDetection reports whether the row is a real flux measurement
	IsDetection bool `parquet:"is_detection,snappy"`
}

// CandidateRow represents one saved source or scanning-page candidate for
// columnar export. Records are generic maps, so only the common identity and
// position fields survive the conversion.
type CandidateRow struct {
	// Name is the ZTF name of the record, empty for unsaved candidates
	Name string `parquet:"name,snappy"`

	// CandID is the scanning-page candidate identifier (nullable)
	CandID *int64 `parquet:"candid,optional,snappy"`

	// RA is the right ascension in degrees
	RA float64 `parquet:"ra,snappy"`

	// Dec is the declination in degrees
	Dec float64 `parquet:"dec,snappy"`

	// Classification is the assigned classification, if any
	Classification string `parquet:"classification,snappy"`

	// Redshift is the assigned redshift (nullable)
	Redshift *float64 `parquet:"redshift,optional,snappy"`
}

// WriteFetchRunsParquet writes a slice of FetchRun structs to a Parquet file.
func WriteFetchRunsParquet(data []FetchRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the FetchRun struct tags
	writer := parquet.NewGenericWriter[FetchRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteSourceFetchesParquet writes a slice of SourceFetch structs to a Parquet file.
func WriteSourceFetchesParquet(data []SourceFetch, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the SourceFetch struct tags
	writer := parquet.NewGenericWriter[SourceFetch](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WritePhotometryParquet writes a slice of PhotometryPoint structs to a Parquet file.
func WritePhotometryParquet(data []PhotometryPoint, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[PhotometryPoint](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteCandidatesParquet writes a slice of CandidateRow structs to a Parquet file.
func WriteCandidatesParquet(data []CandidateRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[CandidateRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertFetchRunRecords converts schema.FetchRunRecord to FetchRun for Parquet export.
func ConvertFetchRunRecords(records []schema.FetchRunRecord) []FetchRun {
	result := make([]FetchRun, len(records))
	for i, record := range records {
		result[i] = FetchRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Succeeded:     record.Succeeded,
			Failed:        record.Failed,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSourceFetchRecords converts schema.SourceFetchRecord to SourceFetch for Parquet export.
func ConvertSourceFetchRecords(records []schema.SourceFetchRecord) []SourceFetch {
	result := make([]SourceFetch, len(records))
	for i, record := range records {
		result[i] = SourceFetch{
			RunID:      record.RunID,
			SourceName: record.SourceName,
			FetchTime:  record.FetchTime,
			OK:         record.OK,
			Rows:       record.Rows,
			Detections: record.Detections,
			Error:      record.Error,
		}
	}
	return result
}

// ConvertRecords flattens source or candidate records into CandidateRow
// structs for Parquet export. Fields absent from a record come out as zero
// values, nullable columns as nulls.
func ConvertRecords(records []schema.Record) []CandidateRow {
	result := make([]CandidateRow, len(records))
	for i, rec := range records {
		row := CandidateRow{
			Name:           rec.String("name"),
			Classification: rec.String("classification"),
		}
		if v, ok := rec.Int64("candid"); ok {
			candid := v
			row.CandID = &candid
		}
		if v, ok := rec.Float("ra"); ok {
			row.RA = v
		}
		if v, ok := rec.Float("dec"); ok {
			row.Dec = v
		}
		if v, ok := rec.Float("redshift"); ok {
			z := v
			row.Redshift = &z
		}
		result[i] = row
	}
	return result
}

// ConvertLightcurve flattens a lightcurve into PhotometryPoint rows for Parquet export.
func ConvertLightcurve(lc *schema.Lightcurve) []PhotometryPoint {
	if lc == nil {
		return nil
	}
	result := make([]PhotometryPoint, len(lc.Rows))
	for i, row := range lc.Rows {
		result[i] = PhotometryPoint{
			SourceName:  lc.Name,
			JDObs:       row.JDObs,
			Filter:      row.Filter,
			Instrument:  row.Instrument,
			MagPSF:      row.MagPSF,
			SigmaMagPSF: row.SigmaMagPSF,
			LimMag:      row.LimMag,
			IsDetection: row.IsDetection(),
		}
	}
	return result
}
