package run

import (
	"context"
	"fmt"
	"io"

	"github.com/flarebyte/smfish-pipeline/internal/app"
	"github.com/flarebyte/smfish-pipeline/internal/config"
	"github.com/flarebyte/smfish-pipeline/internal/stage"
)

// Flags select the root command action. When several are set, --list
// wins over --all, which wins over --stage.
type Flags struct {
	All    bool
	Stage  string
	List   bool
	Format string
}

// Selected reports whether any action was requested.
func (f Flags) Selected() bool {
	return f.List || f.All || f.Stage != ""
}

// Execute loads the pipeline and performs the selected action. Stage and
// pipeline failures are returned as exit errors.
func Execute(ctx context.Context, opts app.Options, f Flags, stdout, stderr io.Writer) error {
	log := app.NewLogger(stderr, opts.Verbose)
	env, err := app.Load(opts, log)
	if err != nil {
		return err
	}
	if f.List {
		return list(env, f.Format, stdout)
	}

	runner, err := env.NewRunner(stdout, opts.ProgressInterval)
	if err != nil {
		return err
	}
	var sum stage.Summary
	if f.All {
		sum, err = runner.RunAll(ctx)
	} else {
		sum, err = runner.RunStage(ctx, f.Stage)
	}
	log.Info("run finished", "ok", err == nil && sum.OK(), "attempted", len(sum.Attempted()), "failedStage", sum.FailedStage)
	if err != nil && ctx.Err() != nil {
		// A unit killed by the signal reports as a failed unit.
		return &app.ExitError{Code: app.ExitInterrupted, Msg: "interrupted", Err: err}
	}
	return app.RunExit(err)
}

func list(env app.Env, format string, w io.Writer) error {
	switch format {
	case "", "text":
		runner, err := env.NewRunner(w, 0)
		if err != nil {
			return err
		}
		runner.List(w)
		return nil
	case "yaml":
		b, err := config.MarshalYAML(env.Config)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return &app.ExitError{Code: app.ExitUsage, Msg: fmt.Sprintf("invalid --format: %s (expected text or yaml)", format)}
	}
}
