package run

import "errors"

// AbnormalExit is the exit code reported for runs that did not complete
// normally: spawn failures and forced timeout terminations. It is never a
// legitimate subprocess exit code.
const AbnormalExit = -1

// ErrTimeout is the Result.Error value of a run terminated on timeout.
// The message matches what the runtime's callers have historically observed.
var ErrTimeout = errors.New("Timeout exceeded")

// Result is the terminal outcome of executing one Job. Exactly one of
// {normal completion, timeout, spawn failure} applies per Job.
type Result struct {
	// Stdout and Stderr hold whatever output accumulated before the run
	// completed or was terminated.
	Stdout string
	Stderr string

	// ExitCode is the subprocess's reported exit code, or AbnormalExit for
	// a timeout or spawn failure. A non-zero exit code is a valid outcome,
	// not an executor-level error.
	ExitCode int

	// TimedOut reports whether the run was forcibly terminated at its
	// timeout.
	TimedOut bool

	// Error is non-nil iff the run did not complete normally: ErrTimeout
	// on timeout, or the underlying spawn/runtime failure.
	Error error
}

// OK returns true if the run completed normally, whatever its exit code.
func (r Result) OK() bool {
	return r.Error == nil
}
