package outwriter

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWithFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "out.txt")

	err := writeWithFile(outFile, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}, "Wrote test")
	require.NoError(t, err)

	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))
}

func TestFormatMag(t *testing.T) {
	assert.Equal(t, "17.25", formatMag(17.25))
	assert.Equal(t, "99.00", formatMag(99))
}

func TestFormatJD(t *testing.T) {
	assert.Equal(t, "2461081.50000", formatJD(2461081.5))
}

func TestFormatRedshift(t *testing.T) {
	assert.Equal(t, "", formatRedshift(nil))

	z := 0.032
	assert.Equal(t, "0.0320", formatRedshift(&z))
}

func TestRecordSaved(t *testing.T) {
	assert.True(t, recordSaved(schema.Record{"name": "ZTF20aaelulu"}))
	assert.False(t, recordSaved(schema.Record{"candid": float64(12345)}))
	assert.False(t, recordSaved(schema.Record{"name": ""}))
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{"wide terminal capped", 200, 40},
		{"narrow terminal floored", 60, 12},
		{"mid terminal passthrough", 90, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, getMaxTableNameWidth(cfg))
		})
	}
}
