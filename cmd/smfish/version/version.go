package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/flarebyte/smfish-pipeline/internal/buildinfo"
	"github.com/spf13/cobra"
)

var (
	flagShort bool
	flagJSON  bool
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if flagShort {
			_, err := fmt.Fprintln(out, buildinfo.Summary())
			return err
		}
		if !flagJSON {
			_, err := fmt.Fprintf(out, "smfish %s\n", buildinfo.Summary())
			return err
		}

		// JSON goes to stdout, the human friendly line to stderr.
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "smfish version: %s\n", buildinfo.Summary())
		info := map[string]any{
			"version":   buildinfo.Version,
			"commit":    buildinfo.Commit,
			"date":      buildinfo.Date,
			"built_by":  buildinfo.BuiltBy,
			"go":        runtime.Version(),
			"go_os":     runtime.GOOS,
			"go_arch":   runtime.GOARCH,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		}
		return encodeJSON(out, info)
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
