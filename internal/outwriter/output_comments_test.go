package outwriter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testComments() []schema.Comment {
	return []schema.Comment{
		{ID: 1, Type: "classification", Text: "SN Ia", Author: "observer1", Date: "2026-02-11"},
		{ID: 2, Type: "comment", Text: "rising fast", Author: "observer2", Date: "2026-02-12"},
	}
}

func TestWriteCommentTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeCommentTable(&buf, "ZTF20aaelulu", testComments())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "classification")
	assert.Contains(t, output, "rising fast")
	assert.Contains(t, output, "observer1")
	assert.Contains(t, output, "Showing 2 comments for ZTF20aaelulu")
}

func TestWriteCommentCSV(t *testing.T) {
	var buf bytes.Buffer
	err := writeCommentCSV(&buf, testComments())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "author")
	assert.Contains(t, lines[1], "SN Ia")
	assert.Contains(t, lines[2], "rising fast")
}

func TestWriteRetrievedTable(t *testing.T) {
	values := map[string]any{
		"classification": "SN Ia",
		"redshift":       0.032,
		"fuffa":          "n/a",
	}

	var buf bytes.Buffer
	err := writeRetrievedTable(&buf, "ZTF20aaelulu", values)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "SN Ia")
	assert.Contains(t, output, "0.032")
	assert.Contains(t, output, "n/a")
	assert.Contains(t, output, "Showing 3 fields for ZTF20aaelulu")
}

func TestWriteRetrievedCSVStableOrder(t *testing.T) {
	values := map[string]any{
		"redshift":       0.032,
		"classification": "SN Ia",
	}

	var buf bytes.Buffer
	err := writeRetrievedCSV(&buf, values)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	// Keys come out sorted regardless of map iteration order
	assert.True(t, strings.HasPrefix(lines[1], "classification"))
	assert.True(t, strings.HasPrefix(lines[2], "redshift"))
}

func TestWriteCommentResultsParquetUnsupported(t *testing.T) {
	cfg := &contract.Config{Output: schema.ParquetOut}

	err := WriteCommentResults("ZTF20aaelulu", testComments(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}
