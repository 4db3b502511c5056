package cli

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/basir/internal/server"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the query router as an MCP tool over stdio",
	Long: `MCP exposes a single "travel_query" tool to MCP clients over stdio.

Logs go to stderr; stdout carries the protocol only.

Example (client configuration):
  {"command": "basir", "args": ["mcp"]}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		router, err := newRouter(cfg, logger)
		if err != nil {
			return err
		}
		return server.ServeStdio(server.NewMCPServer(router, Version, logger.Named("mcp")))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
