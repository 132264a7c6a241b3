package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTitle names the pipeline in full-run banners.
const DefaultTitle = "smFISH ANALYSIS PIPELINE"

// Runner executes registry stages one unit at a time, stopping at the
// first failure.
type Runner struct {
	reg        *Registry
	exec       Executor
	baseDir    string
	out        io.Writer
	log        *slog.Logger
	title      string
	resultsDir string
	progress   *progressReporter
	interval   time.Duration
	exists     func(path string) bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithBaseDir resolves relative unit paths against dir.
func WithBaseDir(dir string) Option {
	return func(r *Runner) { r.baseDir = dir }
}

// WithOutput sets the writer for human-readable progress.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTitle sets the pipeline title printed by RunAll.
func WithTitle(title string) Option {
	return func(r *Runner) { r.title = title }
}

// WithResultsDir sets the directory mentioned after a successful full run.
func WithResultsDir(dir string) Option {
	return func(r *Runner) { r.resultsDir = dir }
}

// WithProgressInterval enables a heartbeat line every d while a unit runs.
func WithProgressInterval(d time.Duration) Option {
	return func(r *Runner) { r.interval = d }
}

// WithExistsFunc replaces the filesystem existence check.
func WithExistsFunc(fn func(path string) bool) Option {
	return func(r *Runner) {
		if fn != nil {
			r.exists = fn
		}
	}
}

// NewRunner returns a runner over reg delegating execution to exec.
func NewRunner(reg *Registry, exec Executor, opts ...Option) *Runner {
	r := &Runner{
		reg:     reg,
		exec:    exec,
		baseDir: ".",
		out:     os.Stdout,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		title:   DefaultTitle,
		exists:  pathExists,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.progress = newProgressReporter(r.interval, r.out)
	return r
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func (r *Runner) resolve(unit string) string {
	if filepath.IsAbs(unit) {
		return unit
	}
	return filepath.Join(r.baseDir, filepath.FromSlash(unit))
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// List writes every stage with its units followed by the canonical order.
func (r *Runner) List(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Available pipeline stages:")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 40))
	for _, s := range r.reg.Stages() {
		_, _ = fmt.Fprintf(w, "\n%s:\n", s.Name)
		for _, u := range s.Units {
			_, _ = fmt.Fprintf(w, "  - %s\n", u)
		}
	}
	_, _ = fmt.Fprintf(w, "\nComplete pipeline order: %s\n", strings.Join(r.reg.Order(), " → "))
}

// RunStage runs the units of the named stage in declared order.
func (r *Runner) RunStage(ctx context.Context, name string) (Summary, error) {
	st, ok := r.reg.Lookup(name)
	if !ok {
		available := r.reg.Names()
		r.printf("Error: Unknown stage '%s'\n", name)
		r.printf("Available stages: %s\n", strings.Join(available, ", "))
		return Summary{}, &UnknownStageError{Name: name, Available: available}
	}
	ss, err := r.runStage(ctx, st)
	sum := Summary{Stages: []StageSummary{ss}}
	if err != nil {
		markFailed(&sum, st.Name, err)
	}
	return sum, err
}

// RunAll runs every stage of the canonical order, halting at the first
// failed stage.
func (r *Runner) RunAll(ctx context.Context) (Summary, error) {
	r.printf("=== STARTING COMPLETE %s ===\n", r.title)
	var sum Summary
	for _, name := range r.reg.Order() {
		st, _ := r.reg.Lookup(name)
		ss, err := r.runStage(ctx, st)
		sum.Stages = append(sum.Stages, ss)
		if err != nil {
			markFailed(&sum, name, err)
			r.printf("\nPipeline failed at stage: %s\n", name)
			r.log.Error("pipeline failed", "stage", name, "error", err)
			return sum, err
		}
	}
	r.printf("\n🎉 COMPLETE PIPELINE FINISHED SUCCESSFULLY! 🎉\n")
	if r.resultsDir != "" {
		r.printf("\nResults can be found in the '%s/' directory\n", r.resultsDir)
	}
	return sum, nil
}

func (r *Runner) runStage(ctx context.Context, st Stage) (StageSummary, error) {
	r.printf("\n=== Running Stage: %s ===\n", strings.ToUpper(st.Name))
	log := r.log.With("stage", st.Name)
	ss := StageSummary{Name: st.Name, Units: make([]UnitOutcome, 0, len(st.Units))}
	for _, unit := range st.Units {
		if err := ctx.Err(); err != nil {
			return ss, err
		}
		if !r.exists(r.resolve(unit)) {
			r.printf("Warning: %s not found, skipping...\n", unit)
			log.Warn("work unit skipped", "unit", unit, "error", ErrMissingUnit)
			ss.Units = append(ss.Units, UnitOutcome{Stage: st.Name, Unit: unit, Status: UnitSkipped})
			continue
		}

		r.printf("Running %s...\n", unit)
		started := time.Now()
		res := r.progress.track(st.Name, unit, func() Result {
			return r.exec.Execute(ctx, unit)
		})
		log.Debug("work unit finished", "unit", unit, "exitCode", res.ExitCode, "elapsed", time.Since(started))

		outcome := UnitOutcome{Stage: st.Name, Unit: unit, Result: &res}
		if !res.OK() {
			outcome.Status = UnitFailed
			ss.Units = append(ss.Units, outcome)
			r.reportFailure(unit, res)
			r.printf("Pipeline stopped due to error in %s\n", unit)
			return ss, &ExecutionError{Stage: st.Name, Unit: unit, Result: res}
		}
		outcome.Status = UnitSucceeded
		ss.Units = append(ss.Units, outcome)
		r.printf("✓ Successfully completed %s\n", unit)
	}
	ss.OK = true
	r.printf("✓ Stage %s completed successfully\n", st.Name)
	return ss, nil
}

func (r *Runner) reportFailure(unit string, res Result) {
	switch {
	case res.Error != "":
		r.printf("✗ Exception running %s: %s\n", unit, res.Error)
	case res.TimedOut:
		r.printf("✗ Error running %s\n", unit)
		r.printf("Error: timeout\n")
	default:
		r.printf("✗ Error running %s\n", unit)
		r.printf("Error: %s\n", res.Stderr)
	}
}

func markFailed(sum *Summary, stageName string, err error) {
	sum.FailedStage = stageName
	var ee *ExecutionError
	if errors.As(err, &ee) {
		sum.FailedUnit = ee.Unit
	}
}
