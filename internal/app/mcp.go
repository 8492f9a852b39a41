package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/config"
	"github.com/xelth-com/ecksnap/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server exposing snapshot tools",
	Long: `Start a Model Context Protocol stdio server that an LLM client can
query during a session. The server exposes three tools:

  snapshot_project       Full filtered snapshot of a project tree as text
  project_stats          File counts, sizes, and skip reasons, no content
  list_snapshot_history  Recent runs from the local history database

Add to your client's MCP configuration:
  {"mcpServers":{"ecksnap":{"command":"ecksnap","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	srv := mcp.NewServer(cfg, appVersion, newLogger())
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
