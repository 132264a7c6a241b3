package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Registry validation errors.
var (
	ErrEmptyStageName    = errors.New("stage name cannot be empty")
	ErrDuplicateStage    = errors.New("duplicate stage")
	ErrEmptyUnit         = errors.New("work unit path cannot be empty")
	ErrEmptyOrder        = errors.New("pipeline order cannot be empty")
	ErrOrderUnknownStage = errors.New("pipeline order references unknown stage")
)

// ErrMissingUnit marks a declared unit whose path does not exist. It is
// recorded on skipped outcomes and never returned by the runner.
var ErrMissingUnit = errors.New("work unit not found")

// UnknownStageError is returned when a stage is not found.
type UnknownStageError struct {
	Name      string
	Available []string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage: %s (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ExecutionError reports the unit whose execution halted a stage.
type ExecutionError struct {
	Stage  string
	Unit   string
	Result Result
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("stage %s: %s failed", e.Stage, e.Unit)
	switch {
	case e.Result.Error != "":
		msg += ": " + sanitizeErrorMessage(e.Result.Error)
	case e.Result.TimedOut:
		msg += ": timeout"
	default:
		msg += fmt.Sprintf(": exit code %d", e.Result.ExitCode)
	}
	return msg
}

// sanitizeErrorMessage collapses whitespace so diagnostics fit one line.
func sanitizeErrorMessage(msg string) string {
	s := strings.Join(strings.Fields(msg), " ")
	if s == "" {
		return "error"
	}
	return s
}
