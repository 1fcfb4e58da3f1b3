package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/modelexec/telemetry"
)

// fakeRuntime writes a shell script standing in for the model runtime.
// The script receives the arguments ("run", model) and the prompt on stdin.
func fakeRuntime(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runtime")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake runtime: %v", err)
	}
	return path
}

// captureRecorder collects every emitted record.
type captureRecorder struct {
	mu   sync.Mutex
	recs []telemetry.Record
}

func (c *captureRecorder) Record(rec telemetry.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
}

func (c *captureRecorder) records() []telemetry.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]telemetry.Record(nil), c.recs...)
}

func TestRunner_Run_EchoesPrompt(t *testing.T) {
	rec := &captureRecorder{}
	runner := NewRunner(WithBinary(fakeRuntime(t, "cat")), WithRecorder(rec))

	res, err := runner.Run(context.Background(), Job{Model: "echo-model", Prompt: "hello"})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !res.OK() {
		t.Fatalf("Result.OK() = false, Error = %v", res.Error)
	}
	if res.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}

	recs := rec.records()
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	got := recs[0]
	if got.Model != "echo-model" {
		t.Errorf("record Model = %q, want %q", got.Model, "echo-model")
	}
	if got.ExitCode != 0 || got.TimedOut {
		t.Errorf("record = {ExitCode: %d, TimedOut: %v}, want {0, false}", got.ExitCode, got.TimedOut)
	}
	if got.OutputChars != len(res.Stdout) {
		t.Errorf("record OutputChars = %d, want %d", got.OutputChars, len(res.Stdout))
	}
	if got.BatchID != "" || got.Concurrency != 0 {
		t.Errorf("standalone run carries batch info: %+v", got)
	}
	if got.CompletedAt.Before(got.StartedAt) {
		t.Errorf("CompletedAt %v before StartedAt %v", got.CompletedAt, got.StartedAt)
	}
}

func TestRunner_Run_SystemPrefix(t *testing.T) {
	runner := NewRunner(WithBinary(fakeRuntime(t, "cat")), WithRecorder(telemetry.Nop()))

	res, err := runner.Run(context.Background(), Job{
		Model:   "m",
		Prompt:  "hello",
		Options: Options{System: "be brief"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	want := "be brief\n\nhello\n"
	if res.Stdout != want {
		t.Errorf("Stdout = %q, want %q", res.Stdout, want)
	}
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	rec := &captureRecorder{}
	runner := NewRunner(
		WithBinary(fakeRuntime(t, "cat >/dev/null\necho partial\necho oops >&2\nexit 7")),
		WithRecorder(rec),
	)

	res, err := runner.Run(context.Background(), Job{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if res.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", res.ExitCode)
	}
	if res.Error != nil {
		t.Errorf("Error = %v, want nil: a non-zero exit is not an executor failure", res.Error)
	}
	if !res.OK() {
		t.Error("Result.OK() = false, want true")
	}
	if res.Stdout != "partial\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "partial\n")
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Errorf("Stderr = %q, want it to contain %q", res.Stderr, "oops")
	}

	recs := rec.records()
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	if recs[0].ExitCode != 7 || recs[0].TimedOut {
		t.Errorf("record = {ExitCode: %d, TimedOut: %v}, want {7, false}", recs[0].ExitCode, recs[0].TimedOut)
	}
}

func TestRunner_Run_Timeout(t *testing.T) {
	rec := &captureRecorder{}
	runner := NewRunner(
		WithBinary(fakeRuntime(t, "echo started\nexec sleep 30")),
		WithRecorder(rec),
	)

	start := time.Now()
	res, err := runner.Run(context.Background(), Job{
		Model:   "m",
		Prompt:  "p",
		Options: Options{Timeout: 150 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run() took %v, want well under the 30s the process would sleep", elapsed)
	}

	if !res.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if res.ExitCode != AbnormalExit {
		t.Errorf("ExitCode = %d, want %d", res.ExitCode, AbnormalExit)
	}
	if !errors.Is(res.Error, ErrTimeout) {
		t.Errorf("Error = %v, want ErrTimeout", res.Error)
	}
	if !strings.Contains(res.Stderr, ErrTimeout.Error()) {
		t.Errorf("Stderr = %q, want appended timeout note", res.Stderr)
	}
	if !strings.Contains(res.Stdout, "started") {
		t.Errorf("Stdout = %q, want output produced before termination", res.Stdout)
	}

	recs := rec.records()
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	if !recs[0].TimedOut || recs[0].ExitCode != AbnormalExit {
		t.Errorf("record = {ExitCode: %d, TimedOut: %v}, want {%d, true}",
			recs[0].ExitCode, recs[0].TimedOut, AbnormalExit)
	}
}

func TestRunner_Run_SpawnFailure(t *testing.T) {
	rec := &captureRecorder{}
	runner := NewRunner(
		WithBinary(filepath.Join(t.TempDir(), "no-such-runtime")),
		WithRecorder(rec),
	)

	res, err := runner.Run(context.Background(), Job{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil: spawn failure is a Result, not an error", err)
	}
	if res.OK() {
		t.Error("Result.OK() = true, want false")
	}
	if res.ExitCode != AbnormalExit {
		t.Errorf("ExitCode = %d, want %d", res.ExitCode, AbnormalExit)
	}
	if res.Error == nil {
		t.Fatal("Error = nil, want spawn failure")
	}
	if !strings.Contains(res.Stderr, res.Error.Error()) {
		t.Errorf("Stderr = %q, want it to carry the failure message", res.Stderr)
	}
	if len(rec.records()) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(rec.records()))
	}
}

func TestRunner_Run_ValidationSkipsSpawn(t *testing.T) {
	rec := &captureRecorder{}
	// A binary that would fail loudly if ever spawned.
	runner := NewRunner(WithBinary("/no/such/binary"), WithRecorder(rec))

	_, err := runner.Run(context.Background(), Job{Model: "bad;model", Prompt: "p"})
	if !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("Run() error = %v, want ErrInvalidJob", err)
	}
	if n := len(rec.records()); n != 0 {
		t.Errorf("len(records) = %d, want 0: no telemetry for rejected jobs", n)
	}
}

func TestRunner_Run_ContextCanceled(t *testing.T) {
	runner := NewRunner(
		WithBinary(fakeRuntime(t, "exec sleep 30")),
		WithRecorder(telemetry.Nop()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res, err := runner.Run(ctx, Job{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if res.OK() {
		t.Error("Result.OK() = true, want false after cancellation")
	}
	if res.ExitCode != AbnormalExit {
		t.Errorf("ExitCode = %d, want %d", res.ExitCode, AbnormalExit)
	}
	if res.TimedOut {
		t.Error("TimedOut = true, want false: cancellation is not a timeout")
	}
}

func TestRunner_Run_Independent(t *testing.T) {
	rec := &captureRecorder{}
	runner := NewRunner(WithBinary(fakeRuntime(t, "cat")), WithRecorder(rec))
	job := Job{Model: "m", Prompt: "same job twice"}

	for i := 0; i < 2; i++ {
		res, err := runner.Run(context.Background(), job)
		if err != nil {
			t.Fatalf("Run() #%d error = %v, want nil", i, err)
		}
		if !res.OK() {
			t.Fatalf("Run() #%d Result.OK() = false", i)
		}
	}
	if n := len(rec.records()); n != 2 {
		t.Errorf("len(records) = %d, want 2: one record per attempt", n)
	}
}

func TestJob_EffectiveTimeout(t *testing.T) {
	if got := (Job{}).effectiveTimeout(); got != DefaultTimeout {
		t.Errorf("effectiveTimeout() = %v, want %v", got, DefaultTimeout)
	}
	job := Job{Options: Options{Timeout: time.Second}}
	if got := job.effectiveTimeout(); got != time.Second {
		t.Errorf("effectiveTimeout() = %v, want %v", got, time.Second)
	}
}
