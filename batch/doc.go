// Package batch schedules many model invocations under a strict concurrency
// ceiling.
//
// The [Scheduler] accepts an ordered list of Jobs and a requested
// concurrency, validates every Job before any subprocess is spawned, and
// admits jobs into a fixed pool of workers. Results are written into slots
// addressed by each job's original index, so the returned slice is ordered
// by submission regardless of completion order.
//
//	sched := batch.NewScheduler(run.NewRunner())
//	results, err := sched.RunAll(ctx, jobs, 4)
//
// One invalid Job aborts the entire call; every other failure mode — a
// timeout, a spawn error, a non-zero exit — is isolated to its own Result
// and has no effect on sibling jobs. Callers always receive a full,
// positionally-ordered result slice equal in length to the submitted jobs.
//
// Each call generates one batch identifier, shared by the telemetry record
// of every job it admits.
package batch
