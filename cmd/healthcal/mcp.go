// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the engine.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KishParikh13/HealthToCalendar/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and exposes the aggregation and
sync engine as tools.

CONFIGURATION:

  {
    "mcpServers": {
      "healthcal": {
        "command": "healthcal",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_stats       Aggregated statistics for a category and date range
  get_chart       Gap-free hourly or daily chart series
  preview_sync    List records a sync would create
  sync_range      Project a date range into calendar records
  list_synced     List synced ranges
  unsync_range    Undo one synced range by ID
  unsync_all      Undo every synced range
  clear_cache     Drop session-cached results

AVAILABLE RESOURCES:

  healthcal://synced        Recently synced ranges
  healthcal://today         Today's stats per category
  healthcal://categories    The category catalog`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(eng)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
