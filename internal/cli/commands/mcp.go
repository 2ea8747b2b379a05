package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/pbixlint/internal/mcpserver"
	"github.com/spf13/cobra"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analyses as MCP tools on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

One tool is registered per analysis (pbix_tables, pbix_dax_measures, ...)
plus pbix_analyze for the full report. Every tool takes a file_path argument.
Logs go to stderr so they never mix with the protocol stream.`,
		Example: `  # Register with an MCP client
  {"command": "pbixlint", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			srv := mcpserver.New(mcpserver.Config{
				Version:  version,
				Loader:   cmdCtx.Loader,
				Analyzer: cmdCtx.Analyzer,
				Logger:   cmdCtx.Logger,
			})

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmdCtx.Logger.Info("starting MCP server", "version", version)
			return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
