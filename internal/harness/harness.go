package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/roach88/respcheck/internal/failure"
	"github.com/roach88/respcheck/internal/keyword"
)

// stderrTail bounds how much of a failed command's stderr ends up in the
// step error.
const stderrTail = 512

// RunOptions configures a suite execution.
type RunOptions struct {
	// Library provides the keywords. Required.
	Library *keyword.Library

	// Logger receives progress; nil discards it.
	Logger *slog.Logger

	// Now stamps results and step durations. Defaults to time.Now.
	Now func() time.Time

	// Env is appended to the process environment of run steps.
	Env []string
}

// Run executes every case of suite in order.
//
// Step failures are part of the result, not errors. Run returns an error
// only when it cannot start, or when ctx is cancelled between cases; the
// partial result is returned alongside ctx.Err() in that case.
func Run(ctx context.Context, suite *Suite, opts RunOptions) (*Result, error) {
	if opts.Library == nil {
		return nil, fmt.Errorf("run suite %s: no keyword library", suite.Name)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	result := NewResult(suite)
	result.StartedAt = opts.Now()
	defer func() { result.FinishedAt = opts.Now() }()

	logger := opts.Logger.With("suite", suite.Name)
	for _, c := range suite.Cases {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		cr := runCase(ctx, c, opts, logger.With("case", c.Name))
		result.AddCase(cr)
	}
	logger.Info("suite finished", "passed", result.Passed(), "cases", len(result.Cases))
	return result, nil
}

// runCase runs the steps of c with a fresh session and stops at the first
// step that does not have its expected outcome.
func runCase(ctx context.Context, c Case, opts RunOptions, logger *slog.Logger) CaseResult {
	session := &keyword.Session{}
	cr := CaseResult{Name: c.Name, Pass: true, Steps: make([]StepResult, 0, len(c.Steps))}

	for i, step := range c.Steps {
		sr := runStep(ctx, session, step, opts)
		cr.Steps = append(cr.Steps, sr)
		cr.RunDir = session.RunDir

		if !sr.Pass {
			cr.Pass = false
			cr.Error = sr.Error
			cr.ErrorCode = sr.Code
			cr.Skipped = len(c.Steps) - i - 1
			logger.Warn("step failed", "step", sr.Name, "code", sr.Code, "error", sr.Error)
			break
		}
		logger.Debug("step passed", "step", sr.Name)
	}
	return cr
}

func runStep(ctx context.Context, session *keyword.Session, step Step, opts RunOptions) StepResult {
	sr := StepResult{Expected: failure.Code(step.Fails)}
	start := opts.Now()

	var err error
	if step.Keyword != "" {
		sr.Kind = KindKeyword
		sr.Name = step.Keyword
		if k, ok := opts.Library.Lookup(step.Keyword); ok {
			sr.Name = k.Name
		}
		sr.Args = step.Args
		err = opts.Library.Call(session, step.Keyword, step.Args)
	} else {
		sr.Kind = KindRun
		sr.Name = step.Run[0]
		sr.Args = step.Run[1:]
		err = runCommand(ctx, session, step, opts.Env)
	}

	sr.Duration = opts.Now().Sub(start)
	checkOutcome(&sr, err)
	return sr
}

// runCommand executes a run step in the session's run directory.
func runCommand(ctx context.Context, session *keyword.Session, step Step, env []string) error {
	name := step.Run[0]
	cmd := exec.CommandContext(ctx, name, step.Run[1:]...)
	cmd.Dir = session.RunDir
	cmd.Env = append(os.Environ(), env...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if step.Stdout != "" {
		out, err := os.Create(session.Resolve(step.Stdout))
		if err != nil {
			return failure.Wrap(failure.ToolFailed, err, "cannot create %s", step.Stdout)
		}
		defer out.Close()
		cmd.Stdout = out
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return failure.New(failure.ToolFailed, "%s exited with status %d%s", name, exitErr.ExitCode(), tail(stderr.String()))
	default:
		return failure.Wrap(failure.ToolFailed, err, "cannot run %s", name)
	}
}

// tail formats the end of a command's stderr as an error suffix.
func tail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if len(stderr) > stderrTail {
		stderr = "..." + stderr[len(stderr)-stderrTail:]
	}
	return ": " + stderr
}
