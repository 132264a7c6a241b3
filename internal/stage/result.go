package stage

import "context"

// Result is the outcome of executing one work unit.
type Result struct {
	ExitCode        int    `json:"exitCode"`
	Stderr          string `json:"stderr,omitempty"`
	StderrTruncated bool   `json:"stderrTruncated,omitempty"`
	TimedOut        bool   `json:"timedOut,omitempty"`
	// Error holds an invocation-level fault, e.g. a missing program.
	Error string `json:"error,omitempty"`
}

// OK reports whether the unit succeeded.
func (r Result) OK() bool {
	return r.ExitCode == 0 && r.Error == "" && !r.TimedOut
}

// Executor runs a single work unit synchronously.
type Executor interface {
	Execute(ctx context.Context, unit string) Result
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, unit string) Result

// Execute calls f(ctx, unit).
func (f ExecutorFunc) Execute(ctx context.Context, unit string) Result {
	return f(ctx, unit)
}

// UnitStatus is the per-unit status recorded in a summary.
type UnitStatus string

const (
	UnitSucceeded UnitStatus = "succeeded"
	UnitFailed    UnitStatus = "failed"
	UnitSkipped   UnitStatus = "skipped"
)

// UnitOutcome records what happened to one declared unit.
type UnitOutcome struct {
	Stage  string     `json:"stage"`
	Unit   string     `json:"unit"`
	Status UnitStatus `json:"status"`
	Result *Result    `json:"result,omitempty"`
}

// StageSummary lists the outcomes of the units a stage reached.
type StageSummary struct {
	Name  string        `json:"name"`
	Units []UnitOutcome `json:"units"`
	OK    bool          `json:"ok"`
}

// Executed returns how many units were handed to the executor.
func (s StageSummary) Executed() int {
	n := 0
	for _, u := range s.Units {
		if u.Status != UnitSkipped {
			n++
		}
	}
	return n
}

// Summary is the result of RunStage or RunAll.
type Summary struct {
	Stages      []StageSummary `json:"stages"`
	FailedStage string         `json:"failedStage,omitempty"`
	FailedUnit  string         `json:"failedUnit,omitempty"`
}

// OK reports whether every attempted stage succeeded.
func (s Summary) OK() bool {
	if s.FailedStage != "" {
		return false
	}
	for _, st := range s.Stages {
		if !st.OK {
			return false
		}
	}
	return true
}

// Attempted returns the units handed to the executor, in order.
func (s Summary) Attempted() []string {
	var out []string
	for _, st := range s.Stages {
		for _, u := range st.Units {
			if u.Status != UnitSkipped {
				out = append(out, u.Unit)
			}
		}
	}
	return out
}
