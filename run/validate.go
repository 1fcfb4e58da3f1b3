package run

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidJob is the sentinel matched by every validation failure.
var ErrInvalidJob = errors.New("invalid job")

// modelMetachars are rejected in model identifiers. The defense is
// rejection, not escaping: an identifier carrying shell metacharacters is
// never forwarded to a subprocess in any form.
const modelMetachars = ";&|"

// ValidationError reports which Job field violated which constraint.
type ValidationError struct {
	// Field names the offending Job field.
	Field string

	// Reason describes the violated constraint.
	Reason string
}

// Error returns the field and constraint description.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job: %s: %s", e.Field, e.Reason)
}

// Is reports whether this error matches the target.
// ValidationError matches ErrInvalidJob to allow sentinel-style checking.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidJob
}

// Validate checks a Job against the field constraints. It is a pure function
// of the Job's fields with no side effects: no subprocess is spawned and no
// telemetry is emitted for an invalid Job.
func Validate(job Job) error {
	if job.Model == "" {
		return &ValidationError{Field: "model", Reason: "must not be empty"}
	}
	if strings.ContainsAny(job.Model, modelMetachars) {
		return &ValidationError{Field: "model", Reason: "must not contain shell metacharacters (;, &, |)"}
	}
	if n := utf8.RuneCountInString(job.Prompt); n > MaxPromptLen {
		return &ValidationError{
			Field:  "prompt",
			Reason: fmt.Sprintf("length %d exceeds maximum %d", n, MaxPromptLen),
		}
	}
	if np := job.Options.NumPredict; np != nil && (*np < MinNumPredict || *np > MaxNumPredict) {
		return &ValidationError{
			Field:  "numPredict",
			Reason: fmt.Sprintf("%d outside [%d, %d]", *np, MinNumPredict, MaxNumPredict),
		}
	}
	if t := job.Options.Temperature; t != nil && (*t < MinTemperature || *t > MaxTemperature) {
		return &ValidationError{
			Field:  "temperature",
			Reason: fmt.Sprintf("%g outside [%g, %g]", *t, MinTemperature, MaxTemperature),
		}
	}
	return nil
}
