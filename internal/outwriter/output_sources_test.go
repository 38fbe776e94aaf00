package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSources() []schema.Record {
	return []schema.Record{
		{
			"name":           "ZTF20aaelulu",
			"ra":             31.5,
			"dec":            -12.25,
			"classification": "SN Ia",
			"redshift":       0.032,
			"creationdate":   "2026-02-10 04:15:00",
		},
		{
			"name": "ZTF20abcdefg",
			"ra":   120.0,
			"dec":  45.5,
		},
	}
}

func testCandidates() []schema.Record {
	return []schema.Record{
		{"name": "ZTF20aaelulu", "candid": float64(12345), "ra": 31.5, "dec": -12.25},
		{"candid": float64(67890), "ra": 120.0, "dec": 45.5},
	}
}

func TestWriteSourceTable(t *testing.T) {
	cfg := &contract.Config{
		Output:  schema.TextOut,
		Program: "Cosmology",
		Width:   120,
	}

	var buf bytes.Buffer
	err := writeSourceTable(&buf, testSources(), cfg, 250*time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "ZTF20aaelulu")
	assert.Contains(t, output, "31.500000")
	assert.Contains(t, output, "-12.250000")
	assert.Contains(t, output, "SN Ia")
	assert.Contains(t, output, "Showing 2 saved sources (1 classified)")
	assert.Contains(t, output, "Program: Cosmology")
}

func TestWriteSourceCSV(t *testing.T) {
	var buf bytes.Buffer
	err := writeSourceCSV(&buf, testSources())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows

	assert.Contains(t, lines[0], "rank")
	assert.Contains(t, lines[0], "classification")
	assert.Contains(t, lines[1], "ZTF20aaelulu")
	assert.Contains(t, lines[1], "SN Ia")
	assert.Contains(t, lines[1], "0.032")
	assert.Contains(t, lines[2], "ZTF20abcdefg")
}

func TestWriteCandidateTable(t *testing.T) {
	cfg := &contract.Config{
		Output:    schema.TextOut,
		Workers:   4,
		UseColors: false,
		Width:     120,
		StartTime: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	err := writeCandidateTable(&buf, testCandidates(), cfg, time.Second)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "ZTF20aaelulu")
	assert.Contains(t, output, contract.SavedValue)
	assert.Contains(t, output, contract.CandidateValue)
	assert.Contains(t, output, "Showing 2 candidates (1 saved, 1 unsaved)")
	assert.Contains(t, output, "with 4 workers")
}

func TestWriteCandidateCSV(t *testing.T) {
	var buf bytes.Buffer
	err := writeCandidateCSV(&buf, testCandidates())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[1], "ZTF20aaelulu")
	assert.Contains(t, lines[1], contract.SavedValue)
	assert.Contains(t, lines[2], "67890")
	assert.Contains(t, lines[2], contract.CandidateValue)
}

func TestWriteSourceResultsJSON(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "sources.json")
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: outFile,
	}

	err := WriteSourceResults(testSources(), cfg, time.Second)
	require.NoError(t, err)

	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var result []map[string]any
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result, 2)
	assert.Equal(t, "ZTF20aaelulu", result[0]["name"])
	assert.Equal(t, 0.032, result[0]["redshift"])
}

func TestWriteCandidateResultsParquetRequiresFile(t *testing.T) {
	cfg := &contract.Config{
		Output:     schema.ParquetOut,
		OutputFile: "",
	}

	err := WriteCandidateResults(testCandidates(), cfg, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output-file")
}

func TestWriteSourceResultsEmpty(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "empty.txt")
	cfg := &contract.Config{
		Output:     schema.TextOut,
		OutputFile: outFile,
		Width:      120,
	}

	err := WriteSourceResults(nil, cfg, 5*time.Millisecond)
	require.NoError(t, err)

	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Showing 0 saved sources")
}
