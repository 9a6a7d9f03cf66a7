//go:build unix

package runner

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func shell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestExecuteCapturesStreamsAndExitCode(t *testing.T) {
	sh := shell(t)

	out, err := New(2*time.Second).Execute(context.Background(), sh, "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out.Stdout))
	assert.Equal(t, "err\n", string(out.Stderr))
	assert.Equal(t, 3, out.ExitCode)
	assert.False(t, out.Success())
}

func TestExecuteArgumentsAreNotShellInterpreted(t *testing.T) {
	sh := shell(t)

	out, err := New(2*time.Second).Execute(context.Background(), sh, "-c", `printf '%s' "$1"`, "sh", "$(echo injected); ls")
	require.NoError(t, err)
	assert.Equal(t, "$(echo injected); ls", string(out.Stdout))
}

func TestExecuteStdinIsClosed(t *testing.T) {
	sh := shell(t)

	start := time.Now()
	out, err := New(2*time.Second).Execute(context.Background(), sh, "-c", "cat; echo done")
	require.NoError(t, err)
	assert.Equal(t, "done\n", string(out.Stdout))
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecuteForTextNonZeroExitPrefersStderr(t *testing.T) {
	sh := shell(t)

	text, ok := New(2*time.Second).ExecuteForText(context.Background(), sh, "-c", "echo usage; echo 'tool 1.4.2' >&2; exit 1")
	require.True(t, ok)
	assert.Equal(t, "tool 1.4.2\n", text)
}

func TestExecuteTimeoutKillsAndReapsChild(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}

	e := New(200 * time.Millisecond)
	start := time.Now()
	_, err = e.Execute(context.Background(), sleep, "30")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimedOut))
	assert.Less(t, elapsed, 2*time.Second)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, sleep, timeoutErr.Program)
	require.Positive(t, timeoutErr.PID)

	// The child has already been waited for: a second reap finds nothing.
	var status unix.WaitStatus
	_, werr := unix.Wait4(timeoutErr.PID, &status, unix.WNOHANG, nil)
	assert.ErrorIs(t, werr, unix.ECHILD)

	// And no process table entry is left behind.
	assert.ErrorIs(t, unix.Kill(timeoutErr.PID, 0), unix.ESRCH)
}

func TestExecuteContextCancelKillsChild(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = New(10*time.Second).Execute(ctx, sleep, "30")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExecuteConcurrentCallsAreIndependent(t *testing.T) {
	sh := shell(t)
	e := New(2 * time.Second)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, ok := e.ExecuteForText(context.Background(), sh, "-c", `echo "worker $1"`, "sh", string(rune('a'+i)))
			if ok {
				results[i] = text
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, "worker "+string(rune('a'+i))+"\n", got)
	}
}
