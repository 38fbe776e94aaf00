package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthlab/marshalgo/schema"
)

// sliceCallCounter tracks how often each slice was queried across rounds.
type sliceCallCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func newSliceCallCounter() *sliceCallCounter {
	return &sliceCallCounter{calls: make(map[string]int)}
}

func (c *sliceCallCounter) inc(slice TimeRange) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := slice.String()
	c.calls[key]++
	return c.calls[key]
}

func (c *sliceCallCounter) get(slice TimeRange) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[slice.String()]
}

func TestRetryingRunIdempotence(t *testing.T) {
	// With every slice succeeding on the first try, the attempt budget is
	// irrelevant: one round happens either way.
	ranges := planSlices(t, 6)

	for _, maxAttempts := range []int{1, 5} {
		var calls atomic.Int32
		query := func(_ context.Context, slice TimeRange) ([]schema.Record, error) {
			calls.Add(1)
			return recordsFor(slice), nil
		}

		records, err := RetryingRun(context.Background(), ranges, query, 3, maxAttempts, true)
		require.NoError(t, err)
		assert.Len(t, records, len(ranges))
		assert.Equal(t, int32(len(ranges)), calls.Load())
	}
}

func TestRetryingRunConvergence(t *testing.T) {
	// Every slice fails deterministically on its first two tries, then
	// succeeds. With a budget above that, the loop must converge on Done.
	const failuresPerSlice = 2
	ranges := planSlices(t, 4)
	counter := newSliceCallCounter()
	query := func(_ context.Context, slice TimeRange) ([]schema.Record, error) {
		if counter.inc(slice) <= failuresPerSlice {
			return nil, errors.New("intermittent timeout")
		}
		return recordsFor(slice), nil
	}

	records, err := RetryingRun(context.Background(), ranges, query, 2, 5, true)
	require.NoError(t, err)
	assert.Len(t, records, len(ranges))
	for _, r := range ranges {
		assert.Equal(t, failuresPerSlice+1, counter.get(r))
	}
}

func TestRetryingRunResidualRaise(t *testing.T) {
	ranges := planSlices(t, 4)
	var calls atomic.Int32
	query := func(_ context.Context, _ TimeRange) ([]schema.Record, error) {
		calls.Add(1)
		return nil, errors.New("portal is down")
	}

	records, err := RetryingRun(context.Background(), ranges, query, 2, 3, true)
	assert.Nil(t, records)

	var residual *ResidualFailureError
	require.ErrorAs(t, err, &residual)
	assert.Equal(t, 3, residual.Rounds)
	assert.Len(t, residual.Remaining, len(ranges))

	// Exactly 3 rounds over the full pending set, not one extra.
	assert.Equal(t, int32(3*len(ranges)), calls.Load())
}

func TestRetryingRunResidualLossy(t *testing.T) {
	ranges := planSlices(t, 4)
	broken := ranges[1]
	query := func(_ context.Context, slice TimeRange) ([]schema.Record, error) {
		if slice.Start.Equal(broken.Start) {
			return nil, errors.New("portal is down")
		}
		return recordsFor(slice), nil
	}

	records, err := RetryingRun(context.Background(), ranges, query, 2, 3, false)
	require.NoError(t, err)
	assert.Len(t, records, len(ranges)-1)
}

func TestRetryingRunResidualLossyAllFail(t *testing.T) {
	ranges := planSlices(t, 3)
	query := func(_ context.Context, _ TimeRange) ([]schema.Record, error) {
		return nil, errors.New("portal is down")
	}

	records, err := RetryingRun(context.Background(), ranges, query, 2, 3, false)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRetryingRunSucceededSlicesNotRequeried(t *testing.T) {
	// The pending set only shrinks: slices that succeeded in round 1 must
	// not be queried again while the flaky slice burns rounds 2 and 3.
	ranges := planSlices(t, 7)
	flaky := ranges[3]
	counter := newSliceCallCounter()
	query := func(_ context.Context, slice TimeRange) ([]schema.Record, error) {
		n := counter.inc(slice)
		if slice.Start.Equal(flaky.Start) && n <= 2 {
			return nil, errors.New("intermittent timeout")
		}
		return recordsFor(slice), nil
	}

	records, err := RetryingRun(context.Background(), ranges, query, 3, 3, true)
	require.NoError(t, err)
	assert.Len(t, records, len(ranges))

	for i, r := range ranges {
		if i == 3 {
			assert.Equal(t, 3, counter.get(r))
		} else {
			assert.Equal(t, 1, counter.get(r), "slice %d must not be re-queried", i)
		}
	}
}

func TestRetryingRunMergesInSliceOrder(t *testing.T) {
	ranges := planSlices(t, 5)
	query := func(_ context.Context, slice TimeRange) ([]schema.Record, error) {
		return recordsFor(slice), nil
	}

	records, err := RetryingRun(context.Background(), ranges, query, 5, 1, true)
	require.NoError(t, err)
	require.Len(t, records, len(ranges))
	for i, r := range ranges {
		assert.Equal(t, recordsFor(r)[0].ID(), records[i].ID())
	}
}

func TestRetryingRunCancelled(t *testing.T) {
	ranges := planSlices(t, 4)
	query := func(_ context.Context, slice TimeRange) ([]schema.Record, error) {
		return recordsFor(slice), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, err := RetryingRun(ctx, ranges, query, 2, 3, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, records)
}
