// Package shell runs work units as external processes built from a command
// template, capturing stderr and the exit code.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/flarebyte/smfish-pipeline/internal/stage"
)

// Exit codes reported when the process never produced one.
const (
	exitCodeNoProcess = -1
	exitCodeTimeout   = -2
)

// Executor implements stage.Executor over an external command.
type Executor struct {
	opts Options
	log  *slog.Logger
}

// New validates opts and returns an executor. A nil logger discards logs.
func New(opts Options, log *slog.Logger) (*Executor, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("shell: %w", err)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts.ArgsTemplate = append([]string(nil), opts.ArgsTemplate...)
	return &Executor{opts: opts, log: log}, nil
}

// Execute runs the command for unit and blocks until it exits, times out
// or ctx is done. Stdout is discarded.
func (e *Executor) Execute(ctx context.Context, unit string) stage.Result {
	args := renderArgs(e.opts.ArgsTemplate, unit)
	cmd := exec.Command(e.opts.Program, args...)
	cmd.Dir = e.opts.WorkingDir
	cmd.Env = applyEnvOverlay(os.Environ(), e.opts.Env)
	if e.opts.KillProcessGroup {
		setProcessGroup(cmd)
	}
	errBuf := &limitedBuffer{max: e.opts.CaptureMaxBytes}
	cmd.Stdout = io.Discard
	cmd.Stderr = errBuf

	e.log.Debug("starting work unit", "unit", unit, "program", e.opts.Program, "args", args, "dir", cmd.Dir)
	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return stage.Result{ExitCode: exitCodeNoProcess, Error: fmt.Sprintf("program %s not found", e.opts.Program)}
		}
		e.log.Debug("start failed", "unit", unit, "error", err)
		return stage.Result{ExitCode: exitCodeNoProcess, Error: fmt.Sprintf("program %s start failed", e.opts.Program)}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timeout <-chan time.Time
	if e.opts.TimeoutMs > 0 {
		timer := time.NewTimer(time.Duration(e.opts.TimeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeout = timer.C
	}

	var runErr error
	timedOut, canceled := false, false
	select {
	case runErr = <-done:
	case <-timeout:
		timedOut = true
		runErr = e.stop(cmd, done)
	case <-ctx.Done():
		canceled = true
		runErr = e.stop(cmd, done)
	}

	res := stage.Result{
		Stderr:          errBuf.String(),
		StderrTruncated: errBuf.truncated,
	}
	switch {
	case timedOut:
		res.ExitCode = exitCodeTimeout
		res.TimedOut = true
		return res
	case canceled:
		res.ExitCode = exitCodeNoProcess
		res.Error = fmt.Sprintf("program %s interrupted: %v", e.opts.Program, ctx.Err())
		return res
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res
		}
		res.ExitCode = exitCodeNoProcess
		res.Error = fmt.Sprintf("program %s execution failed", e.opts.Program)
	}
	return res
}

// stop sends a graceful termination, then kills after the grace period.
func (e *Executor) stop(cmd *exec.Cmd, done <-chan error) error {
	terminate(cmd, e.opts.KillProcessGroup)
	grace := time.NewTimer(time.Duration(e.opts.TermGraceMs) * time.Millisecond)
	defer grace.Stop()
	select {
	case err := <-done:
		return err
	case <-grace.C:
		kill(cmd, e.opts.KillProcessGroup)
		return <-done
	}
}

// Argv returns the program and arguments Execute runs for unit.
func (e *Executor) Argv(unit string) []string {
	return append([]string{e.opts.Program}, renderArgs(e.opts.ArgsTemplate, unit)...)
}

// LookPath resolves the configured program on PATH.
func (e *Executor) LookPath() (string, error) {
	return exec.LookPath(e.opts.Program)
}
