// Package runner spawns short-lived child processes with a hard wall-clock
// budget and captures what they print.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the wall-clock budget of a single invocation.
	DefaultTimeout = time.Second
	// DefaultPollInterval is how often the wait loop checks on the child.
	DefaultPollInterval = 25 * time.Millisecond
	// DefaultWaitDelay bounds pipe draining after the child has been killed.
	DefaultWaitDelay = 250 * time.Millisecond
)

var (
	// ErrSpawnFailed matches errors for programs that could not be started.
	ErrSpawnFailed = errors.New("spawn failed")
	// ErrTimedOut matches errors for programs killed after exceeding the timeout.
	ErrTimedOut = errors.New("timed out")
)

// SpawnError reports a program that could not be started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() []error { return []error{ErrSpawnFailed, e.Err} }

// TimeoutError reports a program that was killed and reaped after running too long.
type TimeoutError struct {
	Program string
	PID     int
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Program, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrTimedOut }

// Output is what a finished process produced. A non-zero ExitCode is not an error.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (o Output) Success() bool { return o.ExitCode == 0 }

// Runner is the subset of Executor used by the prober and the project detector.
type Runner interface {
	Execute(ctx context.Context, program string, args ...string) (Output, error)
	ExecuteForText(ctx context.Context, program string, args ...string) (string, bool)
	LookPath(name string) (string, error)
}

// Executor runs programs directly (never through a shell) with stdin closed.
// Its fields are read-only after construction, so one Executor may be shared
// by any number of goroutines.
type Executor struct {
	Timeout      time.Duration
	PollInterval time.Duration
	WaitDelay    time.Duration
}

// New returns an Executor with the given timeout; zero selects DefaultTimeout.
func New(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		Timeout:      timeout,
		PollInterval: DefaultPollInterval,
		WaitDelay:    DefaultWaitDelay,
	}
}

// LookPath resolves name through the executable search path.
func (e *Executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Execute runs program with args and waits for it to exit, the timeout to
// elapse, or ctx to be canceled. In the latter two cases the child is killed
// and reaped before Execute returns, and whatever it printed is discarded.
func (e *Executor) Execute(ctx context.Context, program string, args ...string) (Output, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	poll := e.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	var stdout, stderr bytes.Buffer
	// Arguments are handed to the program verbatim; no shell is involved.
	cmd := exec.Command(program, args...) // #nosec G204
	cmd.Stdin = nil
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = e.WaitDelay

	if err := cmd.Start(); err != nil {
		return Output{}, &SpawnError{Program: program, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			return finished(program, cmd, &stdout, &stderr, err)
		case <-ctx.Done():
			kill(cmd, done)
			return Output{}, ctx.Err()
		case <-ticker.C:
			if time.Now().Before(deadline) {
				continue
			}
			pid := cmd.Process.Pid
			kill(cmd, done)
			return Output{}, &TimeoutError{Program: program, PID: pid, Timeout: timeout}
		}
	}
}

// kill force-terminates the child and blocks until Wait has reaped it.
func kill(cmd *exec.Cmd, done <-chan error) {
	_ = cmd.Process.Kill()
	<-done
}

func finished(program string, cmd *exec.Cmd, stdout, stderr *bytes.Buffer, waitErr error) (Output, error) {
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	if waitErr == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return out, nil
	}
	// exec.ErrWaitDelay: the child exited but a descendant kept the pipes
	// open. Its own status is still valid.
	if errors.Is(waitErr, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		return out, nil
	}
	return Output{}, fmt.Errorf("wait %s: %w", program, waitErr)
}

// ExecuteForText runs program and picks one stream as its textual answer.
// After a clean exit stdout wins unless blank; after a non-zero exit stderr
// wins unless blank. Failures and blank output both yield ok == false.
func (e *Executor) ExecuteForText(ctx context.Context, program string, args ...string) (string, bool) {
	out, err := e.Execute(ctx, program, args...)
	if err != nil {
		return "", false
	}
	return SelectText(out)
}

// SelectText applies the stream precedence of ExecuteForText to out.
func SelectText(out Output) (string, bool) {
	primary, secondary := out.Stdout, out.Stderr
	if !out.Success() {
		primary, secondary = out.Stderr, out.Stdout
	}
	if text := cleanText(primary); text != "" {
		return text, true
	}
	if text := cleanText(secondary); text != "" {
		return text, true
	}
	return "", false
}

func cleanText(b []byte) string {
	text := strings.ToValidUTF8(string(b), "")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
