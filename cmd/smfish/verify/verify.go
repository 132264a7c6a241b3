package verify

import (
	"fmt"

	"github.com/flarebyte/smfish-pipeline/internal/app"
	checks "github.com/flarebyte/smfish-pipeline/internal/verify"
	"github.com/spf13/cobra"
)

// NewCmd implements `smfish verify`. opts points at the root persistent
// flags.
func NewCmd(opts *app.Options) *cobra.Command {
	var noGitignore bool
	cmd := &cobra.Command{
		Use:           "verify",
		Short:         "Check that every declared notebook and pipeline file is in place",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := app.NewLogger(cmd.ErrOrStderr(), opts.Verbose)
			env, err := app.Load(*opts, log)
			if err != nil {
				return err
			}
			v := env.Config.Verify
			sections := checks.Sections(env.Config.Stages, v.Required, v.Dirs)
			out := cmd.OutOrStdout()
			rep, err := checks.Run(env.BaseDir, sections, checks.Options{
				MinNotebooks: v.MinNotebooks,
				NoGitignore:  noGitignore,
			}, out)
			if err != nil {
				return &app.ExitError{Code: app.ExitFailure, Msg: err.Error(), Err: err}
			}
			_, _ = fmt.Fprintf(out, "\nPipeline directory: %s\n", env.BaseDir)
			if !rep.OK() {
				return &app.ExitError{
					Code: app.ExitFailure,
					Msg:  fmt.Sprintf("verification failed: %d missing, %d/%d notebooks", len(rep.Missing()), len(rep.Notebooks), rep.MinNotebooks),
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "Also count notebooks ignored by .gitignore")
	return cmd
}
