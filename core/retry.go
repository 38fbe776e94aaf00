package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// ResidualFailureError reports the slices still failing after the round
// budget is spent. Returned only when the caller asked for strict mode.
type ResidualFailureError struct {
	Rounds    int
	Remaining []TimeRange
}

func (e *ResidualFailureError) Error() string {
	ranges := make([]string, 0, len(e.Remaining))
	for _, r := range e.Remaining {
		ranges = append(ranges, r.String())
	}
	return fmt.Sprintf("%d time slices still failing after %d rounds: %s",
		len(e.Remaining), e.Rounds, strings.Join(ranges, ", "))
}

// RetryingRun drives RunSlices over the pending slices until every slice has
// succeeded or maxAttempts rounds are spent. maxAttempts counts rounds of the
// whole pending set, not per-slice tries: a slice failing in round 1 and
// retried in round 2 draws on the same global budget as every other pending
// slice. The pending set only shrinks; a slice that succeeded in an earlier
// round is never queried again.
//
// When slices remain after the last round, raiseOnFail selects between a
// ResidualFailureError carrying the unresolved ranges and a lossy return of
// whatever was collected, with the loss reported on the warning channel.
func RetryingRun(ctx context.Context, ranges []TimeRange, query QueryFunc, workers, maxAttempts int, raiseOnFail bool) ([]schema.Record, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	pending := make([]SliceTask, 0, len(ranges))
	for _, r := range ranges {
		pending = append(pending, SliceTask{Slice: r, Query: query})
	}

	var done []QueryOutcome
	for attempt := 1; len(pending) > 0; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcomes := RunSlices(ctx, pending, workers)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var failed []SliceTask
		for _, o := range outcomes {
			if o.Success() {
				done = append(done, o)
				continue
			}
			contract.LogWarn(fmt.Sprintf("slice %s failed in round %d", o.Task.Slice, attempt), o.Err)
			failed = append(failed, o.Task)
		}
		pending = failed

		if len(pending) > 0 && attempt == maxAttempts {
			remaining := make([]TimeRange, 0, len(pending))
			for _, t := range pending {
				remaining = append(remaining, t.Slice)
			}
			residual := &ResidualFailureError{Rounds: maxAttempts, Remaining: remaining}
			if raiseOnFail {
				return nil, residual
			}
			contract.LogWarn("returning partial results", residual)
			break
		}
	}

	return MergeOutcomes(done), nil
}
