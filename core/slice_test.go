package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

func TestPlanSlicesCoverage(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		window     time.Duration
		step       time.Duration
		wantSlices int
	}{
		{"even split", 30 * day, 5 * day, 6},
		{"trailing partial slice", 31 * day, 5 * day, 7},
		{"window smaller than step", 1 * day, 5 * day, 1},
		{"uneven split", 10 * day, 3 * day, 4},
		{"single slice", 5 * day, 5 * day, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := TimeRange{Start: start, End: start.Add(tc.window)}
			slices, err := PlanSlices(r, tc.step)
			require.NoError(t, err)
			require.Len(t, slices, tc.wantSlices)

			// Contiguous, non-overlapping, covering the range exactly.
			assert.True(t, slices[0].Start.Equal(r.Start))
			for i := 1; i < len(slices); i++ {
				assert.True(t, slices[i].Start.Equal(slices[i-1].End))
			}
			assert.True(t, slices[len(slices)-1].End.Equal(r.End))

			for _, s := range slices {
				assert.LessOrEqual(t, s.End.Sub(s.Start), tc.step)
				assert.False(t, s.End.Before(s.Start))
			}
		})
	}
}

func TestPlanSlicesInvalidStep(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := TimeRange{Start: start, End: start.Add(10 * day)}

	for _, step := range []time.Duration{0, -time.Hour} {
		slices, err := PlanSlices(r, step)
		assert.ErrorIs(t, err, ErrInvalidStep)
		assert.Nil(t, slices)
	}
}

func TestPlanSlicesZeroWidthRange(t *testing.T) {
	instant := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := TimeRange{Start: instant, End: instant}

	slices, err := PlanSlices(r, 5*day)
	require.NoError(t, err)
	require.Len(t, slices, 1)
	assert.True(t, slices[0].Start.Equal(instant))
	assert.True(t, slices[0].End.Equal(instant))
}

func TestPlanSlicesReversedRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := TimeRange{Start: start, End: start.Add(-day)}

	_, err := PlanSlices(r, 5*day)
	assert.ErrorContains(t, err, "precedes")
}

func TestPlanSlicesDeterministic(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := TimeRange{Start: start, End: start.Add(17 * day)}

	first, err := PlanSlices(r, 4*day)
	require.NoError(t, err)
	second, err := PlanSlices(r, 4*day)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
