package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Result is the outcome of one completed mkfs.ocfs2 process.
type Result struct {
	Success  bool          `json:"success"`
	ExitCode int           `json:"exit_code"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

// Runner runs an external command to completion and captures its output.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (*Result, error)
}

// ExecRunner runs commands with os/exec, capturing stdout and stderr
// together. If Progress is set, a spinner with Message is drawn on it
// until the process exits. Signals listed in Signals are caught only while
// the process runs and kill it instead of the caller.
type ExecRunner struct {
	Progress io.Writer
	Message  string
	Signals  []os.Signal
}

// Run starts the command and blocks until it exits. A non-zero exit is
// reported in the Result; only failing to start or being interrupted is
// an error.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string) (*Result, error) {
	if len(r.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, r.Signals...)
		defer stop()
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	// Don't hang on children that inherited the output pipe after a kill.
	cmd.WaitDelay = 2 * time.Second

	logrus.WithField("argv", append([]string{name}, args...)).Debug("starting process")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	stop := func() {}
	if r.Progress != nil {
		stop = startSpinner(r.Progress, r.Message, 100*time.Millisecond)
	}
	err := cmd.Wait()
	stop()

	res := &Result{
		Output:   out.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.Success = true
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	logrus.WithFields(logrus.Fields{
		"exit_code": res.ExitCode,
		"duration":  res.Duration,
	}).Debug("process exited")

	return res, nil
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startSpinner animates "<frame> msg" on w until the returned func is called.
func startSpinner(w io.Writer, msg string, interval time.Duration) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], msg)
			select {
			case <-done:
				// Clear the line
				fmt.Fprint(w, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
