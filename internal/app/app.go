// Package app wires configuration, logging and the executor into a stage
// runner for the smfish commands.
package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/flarebyte/smfish-pipeline/internal/config"
	"github.com/flarebyte/smfish-pipeline/internal/shell"
	"github.com/flarebyte/smfish-pipeline/internal/stage"
)

// Options are the settings shared by every command.
type Options struct {
	ConfigPath       string
	Dir              string
	Verbose          bool
	ProgressInterval time.Duration
}

// Env is a loaded configuration with its resolved base directory.
type Env struct {
	Config  config.Config
	BaseDir string
	Log     *slog.Logger
}

// NewLogger returns a text logger tagged with a fresh run id. Only errors
// are logged unless verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run", uuid.New().String())
}

// Load reads the config (or the built-in default) and resolves the base
// directory; --dir wins over the config root.
func Load(opts Options, log *slog.Logger) (Env, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return Env{}, &ExitError{Code: ExitUsage, Msg: err.Error(), Err: err}
		}
		cfg = loaded
	}
	base := cfg.BaseDir()
	if opts.Dir != "" {
		base = opts.Dir
	}
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}
	log.Debug("config loaded", "config", opts.ConfigPath, "baseDir", base, "stages", len(cfg.Stages))
	return Env{Config: cfg, BaseDir: base, Log: log}, nil
}

// Executor builds the shell executor running in the base directory.
func (e Env) Executor() (*shell.Executor, error) {
	exec, err := shell.New(e.Config.ShellOptions(e.BaseDir), e.Log)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Msg: err.Error(), Err: err}
	}
	return exec, nil
}

// NewRunner builds the shell executor and the stage runner writing
// progress to out.
func (e Env) NewRunner(out io.Writer, progress time.Duration) (*stage.Runner, error) {
	reg, err := e.Config.Registry()
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Msg: err.Error(), Err: err}
	}
	exec, err := e.Executor()
	if err != nil {
		return nil, err
	}
	return stage.NewRunner(reg, exec,
		stage.WithBaseDir(e.BaseDir),
		stage.WithOutput(out),
		stage.WithLogger(e.Log),
		stage.WithTitle(e.Config.Title),
		stage.WithResultsDir(e.Config.ResultsDir),
		stage.WithProgressInterval(progress),
	), nil
}
