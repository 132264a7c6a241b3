package app

import (
	"context"
	"errors"

	"github.com/flarebyte/smfish-pipeline/internal/stage"
)

const (
	ExitSuccess     = 0
	ExitFailure     = 1 // a unit, stage, pipeline or verification failed
	ExitUsage       = 2 // unknown stage, invalid flags or config
	ExitInterrupted = 130
)

// ExitError carries the process exit code for main.
type ExitError struct {
	Code int
	Msg  string
	Err  error
}

func (e *ExitError) Error() string { return e.Msg }
func (e *ExitError) ExitCode() int { return e.Code }
func (e *ExitError) Unwrap() error { return e.Err }

// RunExit maps a runner error to an exit error; nil stays nil.
func RunExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	var unknown *stage.UnknownStageError
	switch {
	case errors.As(err, &unknown):
		return &ExitError{Code: ExitUsage, Msg: err.Error(), Err: err}
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: ExitInterrupted, Msg: "interrupted", Err: err}
	default:
		return &ExitError{Code: ExitFailure, Msg: err.Error(), Err: err}
	}
}
