package diagnose

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flarebyte/smfish-pipeline/internal/app"
	"github.com/flarebyte/smfish-pipeline/internal/stage"
	"github.com/spf13/cobra"
)

// Report is the JSON document printed by `smfish diagnose`.
type Report struct {
	ContractVersion string            `json:"contractVersion"`
	BaseDir         string            `json:"baseDir"`
	Program         string            `json:"program"`
	ProgramPath     string            `json:"programPath,omitempty"`
	ProgramError    string            `json:"programError,omitempty"`
	Stages          []stage.StagePlan `json:"stages"`
}

type flags struct {
	stage      string
	untilStage string
	pretty     bool
	dump       string
}

// NewCmd implements `smfish diagnose`: it resolves what a run would execute
// without running any notebook.
func NewCmd(opts *app.Options) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "diagnose",
		Short:         "Show the resolved units and commands of a run without executing it",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*opts, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.stage, "stage", "", "Diagnose a single stage")
	cmd.Flags().StringVar(&f.untilStage, "until-stage", "", "Diagnose the pipeline through this stage (inclusive)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Pretty JSON")
	cmd.Flags().StringVar(&f.dump, "dump", "", "Also write the report JSON to this path")
	return cmd
}

func run(opts app.Options, f flags, stdout, stderr io.Writer) error {
	if f.stage != "" && f.untilStage != "" {
		return &app.ExitError{Code: app.ExitUsage, Msg: "--stage and --until-stage are mutually exclusive"}
	}
	env, err := app.Load(opts, app.NewLogger(stderr, opts.Verbose))
	if err != nil {
		return err
	}
	exec, err := env.Executor()
	if err != nil {
		return err
	}
	runner, err := env.NewRunner(io.Discard, 0)
	if err != nil {
		return err
	}
	plans, err := runner.Plan(f.stage, f.untilStage)
	if err != nil {
		return app.RunExit(err)
	}

	rep := Report{
		ContractVersion: "1",
		BaseDir:         relativizePath(env.BaseDir),
		Program:         env.Config.Shell.Program,
		Stages:          plans,
	}
	if p, err := exec.LookPath(); err != nil {
		rep.ProgramError = fmt.Sprintf("program %s not found", rep.Program)
	} else {
		rep.ProgramPath = p
	}
	for i := range rep.Stages {
		for j := range rep.Stages[i].Units {
			u := &rep.Stages[i].Units[j]
			u.Path = relativizePath(u.Path)
		}
	}

	if f.dump != "" {
		if err := writeJSONFile(f.dump, rep); err != nil {
			return err
		}
	}
	return printReport(stdout, rep, f.pretty)
}

// relativizePath converts an absolute path under the current working
// directory to a relative one for stable output; otherwise returns p.
func relativizePath(p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(cwd, p)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || (len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dump dir: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func printReport(w io.Writer, rep Report, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(rep, "", "  ")
	} else {
		b, err = json.Marshal(rep)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
