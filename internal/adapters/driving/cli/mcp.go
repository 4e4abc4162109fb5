package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pacer/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the suggest_duration and index_deck tools. Requests are
rate limited per owner using mcp.rate_limit and mcp.burst from the config.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  pacer mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  pacer mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "pacer": {
        "command": "/path/to/pacer",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Suggestion: suggestionService,
		Indexer:    indexerService,
		Settings:   settingsService,
		Limits:     settings.MCP,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return withSweeper(cmd.Context(), func(ctx context.Context) error {
			return server.RunHTTP(ctx, addr)
		})
	}

	return withSweeper(cmd.Context(), server.Run)
}
