package run

import "time"

// Default and limit values for Job fields.
const (
	// MaxPromptLen is the maximum accepted prompt length in characters.
	MaxPromptLen = 100_000

	// MinNumPredict and MaxNumPredict bound Options.NumPredict.
	MinNumPredict = 1
	MaxNumPredict = 8192

	// MinTemperature and MaxTemperature bound Options.Temperature.
	MinTemperature = 0.0
	MaxTemperature = 2.0

	// DefaultTimeout applies when Options.Timeout is zero.
	DefaultTimeout = 120 * time.Second
)

// Job is a single requested model invocation.
// A Job is immutable once validated.
type Job struct {
	// Model is the model identifier passed to the runtime.
	Model string

	// Prompt is the text fed to the model on standard input.
	Prompt string

	// Options holds optional generation settings.
	Options Options
}

// Options holds the optional settings of a Job. Temperature and NumPredict
// use pointers so that an explicit zero is distinguishable from unset.
type Options struct {
	// System is prepended to the prompt, separated by a blank line.
	System string

	// Temperature, if set, must be within [MinTemperature, MaxTemperature].
	Temperature *float64

	// NumPredict, if set, must be within [MinNumPredict, MaxNumPredict].
	NumPredict *int

	// Timeout bounds the run's wall-clock time. Zero means DefaultTimeout.
	Timeout time.Duration
}

// effectivePrompt returns the prompt with the system text prefixed.
func (j Job) effectivePrompt() string {
	if j.Options.System == "" {
		return j.Prompt
	}
	return j.Options.System + "\n\n" + j.Prompt
}

// effectiveTimeout returns the Job's timeout, defaulted when unset.
func (j Job) effectiveTimeout() time.Duration {
	if j.Options.Timeout <= 0 {
		return DefaultTimeout
	}
	return j.Options.Timeout
}

// BatchInfo correlates an execution with the scheduler call that admitted
// it. The zero value marks a standalone run.
type BatchInfo struct {
	// ID is shared by every job in one scheduler call.
	ID string

	// Concurrency is the effective concurrency limit of the batch.
	Concurrency int
}
