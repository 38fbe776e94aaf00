package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/growthlab/marshalgo/schema"
)

// QueryFunc runs the portal query for one time slice. Implementations are
// closed over the fixed query parameters (program, filters) so the runner only
// ever sees the moving part, the slice itself.
type QueryFunc func(ctx context.Context, slice TimeRange) ([]schema.Record, error)

// SliceTask pairs one time slice with its bound query function. Identity is
// the slice endpoints: the retry loop removes a task from its pending set by
// the slice, never by pointer.
type SliceTask struct {
	Slice TimeRange
	Query QueryFunc
}

// QueryOutcome is the terminal result of running one task in a round. Either
// Records is populated (Err == nil) or Err explains the failure.
type QueryOutcome struct {
	Task    SliceTask
	Records []schema.Record
	Err     error
}

// Success reports whether the task produced records.
func (o QueryOutcome) Success() bool {
	return o.Err == nil
}

// RunSlices executes tasks across a bounded pool of workers and collects their
// outcomes. Each task runs independently: one task's error or panic becomes a
// Failure outcome and never aborts its siblings. No completion order is
// guaranteed. Cancelling ctx stops scheduling new tasks; in-flight tasks
// finish and their outcomes are kept, unscheduled tasks produce no outcome.
func RunSlices(ctx context.Context, tasks []SliceTask, workers int) []QueryOutcome {
	if len(tasks) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan SliceTask, len(tasks))
	outcomeCh := make(chan QueryOutcome, len(tasks))
	var wg sync.WaitGroup

	// Start worker pool
	for range workers {
		wg.Go(func() {
			for t := range taskCh {
				if ctx.Err() != nil {
					// Skipped, not failed: the task stays pending for the caller.
					continue
				}
				outcomeCh <- runTask(ctx, t)
			}
		})
	}

	// Send tasks to worker channel
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)

	// Wait for all workers to finish processing
	wg.Wait()
	close(outcomeCh)

	outcomes := make([]QueryOutcome, 0, len(tasks))
	for o := range outcomeCh {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// runTask invokes one bound query and converts panics into Failure outcomes
// so a misbehaving query function cannot take the pool down.
func runTask(ctx context.Context, t SliceTask) (out QueryOutcome) {
	out.Task = t
	defer func() {
		if r := recover(); r != nil {
			out.Records = nil
			out.Err = fmt.Errorf("slice query panicked: %v", r)
		}
	}()
	out.Records, out.Err = t.Query(ctx, t.Slice)
	return out
}
