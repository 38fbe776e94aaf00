package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRetrieveScalar tests direct map lookups.
func TestRetrieveScalar(t *testing.T) {
	src := map[string]any{
		"classification": "SN Ia",
		"redshift":       0.032,
	}

	got, ok := Retrieve(src, "classification")
	assert.True(t, ok)
	assert.Equal(t, "SN Ia", got)

	got, ok = Retrieve(src, "redshift")
	assert.True(t, ok)
	assert.Equal(t, 0.032, got)
}

// TestRetrieveNested tests dotted-path descent through nested maps.
func TestRetrieveNested(t *testing.T) {
	src := map[string]any{
		"summary": map[string]any{
			"redshift": map[string]any{"value": 0.05},
		},
	}

	got, ok := Retrieve(src, "summary.redshift.value")
	assert.True(t, ok)
	assert.Equal(t, 0.05, got)
}

// TestRetrieveFanOut tests that slices fan out the remaining path over
// every element, matching how uploaded_spectra.observer behaves.
func TestRetrieveFanOut(t *testing.T) {
	src := map[string]any{
		"uploaded_spectra": []any{
			map[string]any{"observer": "A"},
			map[string]any{"observer": "B"},
		},
	}

	got, ok := Retrieve(src, "uploaded_spectra.observer")
	assert.True(t, ok)
	assert.Equal(t, []any{"A", "B"}, got)
}

// TestRetrieveMissing tests that a missing segment fails the lookup.
func TestRetrieveMissing(t *testing.T) {
	src := map[string]any{"name": "ZTF18abmjvpb"}

	_, ok := Retrieve(src, "fuffa")
	assert.False(t, ok)

	_, ok = Retrieve(src, "name.deeper")
	assert.False(t, ok)
}

// TestRetrieveAllDefault tests default substitution and missing-key reporting.
func TestRetrieveAllDefault(t *testing.T) {
	src := Record{"name": "ZTF18abmjvpb", "redshift": 0.1}

	out, missing := RetrieveAll(src, []string{"name", "redshift", "fuffa"}, "n/a")
	assert.Equal(t, "ZTF18abmjvpb", out["name"])
	assert.Equal(t, 0.1, out["redshift"])
	assert.Equal(t, "n/a", out["fuffa"])
	assert.Equal(t, []string{"fuffa"}, missing)
}
