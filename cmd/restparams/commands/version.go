package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/restparams"
	"github.com/erraggy/restparams/internal/cliutil"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			cliutil.Writef(w, "restparams v%s\n", restparams.Version())
			cliutil.Writef(w, "commit: %s\n", restparams.Commit())
			cliutil.Writef(w, "built: %s\n", restparams.BuildTime())
			cliutil.Writef(w, "go: %s\n", restparams.GoVersion())
			return nil
		},
	}
}
