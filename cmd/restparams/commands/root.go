package commands

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// ErrRejected is returned by check when the request fails validation. The
// error envelope has already been written to stdout.
var ErrRejected = errors.New("request rejected")

// app carries state shared by the subcommands.
type app struct {
	verbose bool
	logger  *slog.Logger
}

// NewRootCommand builds the restparams command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "restparams",
		Short: "Declarative HTTP request parameter validation",
		Long: `restparams validates HTTP request parameters against declarations such as

  my_int: int
  my_int__lt: 100
  color: [red, green]
  user: {model: User}

Use "check" to validate a single request, "serve" to run declared endpoints
over HTTP, and "mcp" to expose validation to MCP clients.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
			slog.SetDefault(a.logger)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newCheckCommand(a),
		newServeCommand(a),
		newMCPCommand(a),
		newVersionCommand(),
	)
	return root
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
