// Package run validates and executes single model invocations against an
// external model runtime.
//
// A [Job] names a model, a prompt, and optional generation settings. The
// [Runner] executes one validated Job at a time: it spawns the model runtime
// as a subprocess, feeds the prompt on standard input, accumulates output,
// and enforces a per-job timeout. Every attempt terminates in exactly one of
// three ways — normal process exit, forced termination on timeout, or a
// spawn/runtime failure — and every outcome is captured in a [Result] rather
// than raised as an error.
//
// # Basic Usage
//
//	runner := run.NewRunner()
//	result, err := runner.Run(ctx, run.Job{
//	    Model:  "llama3.2",
//	    Prompt: "Why is the sky blue?",
//	})
//	if err != nil {
//	    // the Job failed validation; nothing was executed
//	}
//	fmt.Println(result.Stdout)
//
// Run returns an error only for validation failures, which occur strictly
// before any subprocess exists. Subprocess-level failures — a missing binary,
// a hung model, a non-zero exit — are surfaced on the Result so that one
// job's failure can never abort its siblings.
//
// # Telemetry
//
// Each Execute emits exactly one [telemetry.Record] to the configured
// recorder, covering timing, exit code, output volume, and the timeout flag.
// Recording is a side channel and cannot fail or stall the run.
//
// # Failure Semantics
//
// A non-zero exit code is not an executor-level error: the model runtime's
// exit codes carry no meaning beyond "process outcome" and are surfaced
// transparently. Result.Error is set only when the run did not complete
// normally (timeout or spawn failure), with ExitCode forced to
// [AbnormalExit].
package run
