package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/restparams/internal/mcpserver"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server over stdio",
		Long: `Run a Model Context Protocol server over stdio exposing the check_params
and describe_params tools. Settings come from RESTPARAMS_* environment
variables; see the server instructions for the full list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logger.Debug("starting MCP server")
			return mcpserver.Run(cmd.Context())
		},
	}
}
