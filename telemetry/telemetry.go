// Package telemetry defines the record emitted for every model run attempt
// and the Recorder interface that receives it.
//
// Recorders are a side channel: the executor hands each completed attempt to
// the configured Recorder and moves on. A Recorder must never be able to
// fail, stall, or abort the run that produced the record.
package telemetry

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Record describes one completed run attempt, successful or not.
// Exactly one Record is produced per attempt.
type Record struct {
	// Model is the model identifier that was invoked.
	Model string `json:"model"`

	// StartedAt and CompletedAt are wall-clock timestamps.
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`

	// DurationMs is measured against the monotonic clock, not the
	// wall-clock timestamps above.
	DurationMs int64 `json:"durationMs"`

	// ExitCode is the subprocess exit code, or -1 for abnormal termination.
	ExitCode int `json:"exitCode"`

	// OutputChars is the length of the accumulated standard output.
	OutputChars int `json:"outputChars"`

	// TimedOut reports whether the run was forcibly terminated.
	TimedOut bool `json:"timedOut"`

	// BatchID correlates records produced by one scheduler call.
	// Empty for standalone runs.
	BatchID string `json:"batchId,omitempty"`

	// Concurrency is the effective concurrency limit of the batch.
	// Zero for standalone runs.
	Concurrency int `json:"concurrency,omitempty"`
}

// Recorder receives one Record per run attempt.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Recording is best-effort; Record must not block and must not panic.
// - Ownership: the Record is passed by value and may be retained.
type Recorder interface {
	Record(rec Record)
}

// Nop returns a Recorder that discards every record.
func Nop() Recorder {
	return nopRecorder{}
}

type nopRecorder struct{}

func (nopRecorder) Record(Record) {}

// Multi returns a Recorder that fans each record out to every given recorder.
func Multi(recorders ...Recorder) Recorder {
	return multiRecorder(recorders)
}

type multiRecorder []Recorder

func (m multiRecorder) Record(rec Record) {
	for _, r := range m {
		r.Record(rec)
	}
}

// WriterRecorder appends one JSON line per record to an io.Writer.
type WriterRecorder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterRecorder creates a WriterRecorder writing to w.
func NewWriterRecorder(w io.Writer) *WriterRecorder {
	return &WriterRecorder{w: w}
}

// Record writes the record as a single JSON line. Write errors are dropped.
func (r *WriterRecorder) Record(rec Record) {
	line, err := json.Marshal(rec)
	if err != nil {
		return
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.w.Write(line)
}
