package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jonwraymond/modelexec/run"
)

// Concurrency bounds for a scheduler call.
const (
	// DefaultConcurrency applies when the caller requests zero.
	DefaultConcurrency = 3

	// MaxConcurrency is the hard ceiling on parallel executions per call.
	MaxConcurrency = 8
)

// Executor runs one already-validated Job to its terminal Result.
// *run.Runner implements Executor.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Execute must never panic or fail past its boundary; every subprocess
//   outcome is absorbed into the Result.
type Executor interface {
	Execute(ctx context.Context, job run.Job, batch run.BatchInfo) run.Result
}

// Scheduler executes batches of Jobs through an Executor under a
// concurrency ceiling.
type Scheduler struct {
	exec Executor
}

// NewScheduler creates a Scheduler that admits jobs into exec.
func NewScheduler(exec Executor) *Scheduler {
	return &Scheduler{exec: exec}
}

// RunAll executes jobs under the given concurrency limit and returns one
// Result per job, positionally matching the input order independent of
// completion order.
//
// A concurrency of zero means DefaultConcurrency; any other value is clamped
// to [1, MaxConcurrency]. Every job is validated before the first one is
// admitted: a single invalid job aborts the whole call with no subprocess
// spawned.
func (s *Scheduler) RunAll(ctx context.Context, jobs []run.Job, concurrency int) ([]run.Result, error) {
	for i := range jobs {
		if err := run.Validate(jobs[i]); err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
	}

	results := make([]run.Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	limit := clampConcurrency(concurrency)
	info := run.BatchInfo{
		ID:          uuid.NewString(),
		Concurrency: limit,
	}

	// Counting-join worker pool: admission happens by a worker pulling the
	// next index, so in-flight executions never exceed the limit and a
	// completed job's slot is immediately reused. Each worker writes only
	// to slots it owns, keyed by original index.
	indexes := make(chan int)
	workers := limit
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = s.exec.Execute(ctx, jobs[i], info)
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results, nil
}

// clampConcurrency resolves the effective concurrency for one call.
func clampConcurrency(n int) int {
	switch {
	case n == 0:
		return DefaultConcurrency
	case n < 1:
		return 1
	case n > MaxConcurrency:
		return MaxConcurrency
	default:
		return n
	}
}
