package run

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonwraymond/modelexec/telemetry"
)

// DefaultBinary is the model runtime invoked when none is configured.
const DefaultBinary = "ollama"

// killGrace bounds how long a timed-out run waits for the terminated
// subprocess to be reaped before returning anyway. The termination signal is
// best-effort: an unresponsive process must not stall the result.
const killGrace = 2 * time.Second

// Config controls how a Runner invokes the model runtime.
type Config struct {
	// Binary is the model runtime executable. Defaults to DefaultBinary.
	Binary string

	// Recorder receives one telemetry record per executed Job.
	// Defaults to telemetry.Nop().
	Recorder telemetry.Recorder
}

// applyDefaults sets default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.Binary == "" {
		c.Binary = DefaultBinary
	}
	if c.Recorder == nil {
		c.Recorder = telemetry.Nop()
	}
}

// Option is a functional option for configuring a Runner.
type Option func(*Config)

// WithBinary sets the model runtime executable.
func WithBinary(path string) Option {
	return func(c *Config) {
		c.Binary = path
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(rec telemetry.Recorder) Option {
	return func(c *Config) {
		c.Recorder = rec
	}
}

// Runner executes Jobs against the configured model runtime.
//
// Contract:
// - Concurrency: a Runner is safe for concurrent use; each execution owns
//   its subprocess exclusively for the lifetime of that one job.
// - Errors: Run returns an error only for validation failures. All
//   subprocess outcomes, including spawn failure and timeout, are absorbed
//   into the Result.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.applyDefaults()
	return &Runner{cfg: cfg}
}

// Run validates and executes a single Job. The returned error is non-nil
// only when validation fails, in which case nothing was executed.
func (r *Runner) Run(ctx context.Context, job Job) (Result, error) {
	if err := Validate(job); err != nil {
		return Result{}, err
	}
	return r.Execute(ctx, job, BatchInfo{}), nil
}

// Execute runs an already-validated Job to its terminal Result and emits
// exactly one telemetry record. Callers outside this module should prefer
// Run, which validates first.
func (r *Runner) Execute(ctx context.Context, job Job, batch BatchInfo) Result {
	startedAt := time.Now()

	var stdout, stderr captureBuffer
	res := r.await(ctx, job, &stdout, &stderr)

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if res.Error != nil {
		if res.Stderr != "" {
			res.Stderr += "\n"
		}
		res.Stderr += res.Error.Error()
	}

	completedAt := time.Now()
	r.cfg.Recorder.Record(telemetry.Record{
		Model:       job.Model,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		// completedAt retains startedAt's monotonic reading, so this is a
		// monotonic duration even if the wall clock was adjusted mid-run.
		DurationMs:  completedAt.Sub(startedAt).Milliseconds(),
		ExitCode:    res.ExitCode,
		OutputChars: utf8.RuneCountInString(res.Stdout),
		TimedOut:    res.TimedOut,
		BatchID:     batch.ID,
		Concurrency: batch.Concurrency,
	})
	return res
}

// await spawns the runtime and blocks until the first terminal transition:
// process exit, timeout, or context cancellation. Output fields of the
// returned Result are filled in by the caller.
func (r *Runner) await(ctx context.Context, job Job, stdout, stderr io.Writer) Result {
	cmd := exec.Command(r.cfg.Binary, "run", job.Model)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Result{ExitCode: AbnormalExit, Error: err}
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: AbnormalExit, Error: err}
	}

	// The runtime treats stdin closure as "prompt complete". Write errors
	// are ignored: the process may legitimately exit before reading.
	go func() {
		_, _ = io.WriteString(stdin, job.effectivePrompt()+"\n")
		_ = stdin.Close()
	}()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(job.effectiveTimeout())
	defer timer.Stop()

	select {
	case waitErr := <-done:
		return resultFromWait(waitErr)

	case <-timer.C:
		r.terminate(cmd, done)
		return Result{ExitCode: AbnormalExit, TimedOut: true, Error: ErrTimeout}

	case <-ctx.Done():
		r.terminate(cmd, done)
		return Result{ExitCode: AbnormalExit, Error: ctx.Err()}
	}
}

// terminate kills the subprocess and waits briefly for it to be reaped.
// A process that survives the signal is abandoned rather than waited on.
func (r *Runner) terminate(cmd *exec.Cmd, done <-chan error) {
	_ = cmd.Process.Kill()
	select {
	case <-done:
	case <-time.After(killGrace):
	}
}

// resultFromWait converts cmd.Wait's outcome into a terminal Result. A
// non-zero exit is surfaced transparently; only wait-level failures (I/O
// errors, signals without exit status) count as abnormal.
func resultFromWait(waitErr error) Result {
	if waitErr == nil {
		return Result{ExitCode: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0 {
		return Result{ExitCode: exitErr.ExitCode()}
	}
	return Result{ExitCode: AbnormalExit, Error: waitErr}
}

// captureBuffer accumulates subprocess output. The mutex matters on the
// timeout path, where a snapshot may race the runtime's copier goroutines
// still draining a killed process's pipes.
type captureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *captureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *captureBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
