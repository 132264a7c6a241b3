package root

import (
	"context"

	"github.com/flarebyte/smfish-pipeline/cmd/smfish/diagnose"
	"github.com/flarebyte/smfish-pipeline/cmd/smfish/run"
	"github.com/flarebyte/smfish-pipeline/cmd/smfish/verify"
	"github.com/flarebyte/smfish-pipeline/cmd/smfish/version"
	"github.com/flarebyte/smfish-pipeline/internal/app"
	"github.com/spf13/cobra"
)

const examples = `  smfish --all                    # Run complete pipeline
  smfish --stage preprocessing    # Run preprocessing only
  smfish --stage analysis         # Run analysis only
  smfish --list                   # List all stages
  smfish verify                   # Check pipeline files are in place
  smfish diagnose --stage training  # Show what a run would execute`

// NewRootCmd creates the root command for smfish.
func NewRootCmd() *cobra.Command {
	var (
		opts  app.Options
		flags run.Flags
	)
	cmd := &cobra.Command{
		Use:     "smfish",
		Short:   "Run the smFISH analysis pipeline",
		Example: examples,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no action flag is provided.
			if !flags.Selected() {
				return cmd.Help()
			}
			return run.Execute(cmd.Context(), opts, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to pipeline config (.cue, .yaml); built-in smFISH pipeline when omitted")
	pf.StringVar(&opts.Dir, "dir", "", "Pipeline directory holding the notebooks (default: config root or current directory)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug details to stderr")

	f := cmd.Flags()
	f.BoolVar(&flags.All, "all", false, "Run the complete pipeline")
	f.StringVar(&flags.Stage, "stage", "", "Run a specific pipeline stage")
	f.BoolVar(&flags.List, "list", false, "List available pipeline stages")
	f.StringVar(&flags.Format, "format", "text", "Output format for --list: text|yaml")
	f.DurationVar(&opts.ProgressInterval, "progress-interval", 0, "Print a progress line at this interval while a notebook runs (0 disables)")

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(verify.NewCmd(&opts))
	cmd.AddCommand(diagnose.NewCmd(&opts))

	return cmd
}

// Execute runs the root command with provided args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
