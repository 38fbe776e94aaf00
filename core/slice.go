// Package core implements the time-sliced, retrying, concurrent query
// orchestrator and the program session layer built on top of it.
package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
)

// ErrInvalidStep is returned when a slice width is zero or negative.
var ErrInvalidStep = errors.New("slice step must be strictly positive")

// TimeRange is a half-open [Start, End) window. Immutable once built.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// String renders the range for log and error messages.
func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(contract.DateTimeFormat), r.End.Format(contract.DateTimeFormat))
}

// PlanSlices cuts a time range into contiguous, non-overlapping sub-ranges of
// width step. The final slice is clipped to r.End. A zero-width range yields a
// single zero-width slice, so a caller querying an instant still issues one
// query. Pure function: no I/O, deterministic for a given input.
func PlanSlices(r TimeRange, step time.Duration) ([]TimeRange, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w (received %s)", ErrInvalidStep, step)
	}
	if r.End.Before(r.Start) {
		return nil, fmt.Errorf("time range end (%s) precedes start (%s)",
			r.End.Format(contract.DateTimeFormat), r.Start.Format(contract.DateTimeFormat))
	}

	if r.Start.Equal(r.End) {
		return []TimeRange{r}, nil
	}

	var slices []TimeRange
	for cur := r.Start; cur.Before(r.End); cur = cur.Add(step) {
		end := cur.Add(step)
		if end.After(r.End) {
			end = r.End
		}
		slices = append(slices, TimeRange{Start: cur, End: end})
	}
	return slices, nil
}
