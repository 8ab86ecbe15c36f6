// ABOUTME: CLI command for undoing synced ranges.
// ABOUTME: Deletes calendar records and removes ledger entries by ID or --all.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var unsyncAll bool

var unsyncCmd = &cobra.Command{
	Use:   "unsync [id]",
	Short: "Undo a synced range",
	Long: `Undo a synced range: delete its calendar records and forget the range.

You can use the full UUID or a unique prefix from 'healthcal synced'.
Record deletions are best-effort; the range is removed from the ledger
even if some deletions fail, so the same dates can be synced fresh.

EXAMPLES:

  healthcal unsync abc12345      # Undo one range by prefix
  healthcal unsync --all         # Undo every synced range`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if unsyncAll {
			if len(args) > 0 {
				return fmt.Errorf("--all takes no range ID")
			}
			report, err := eng.UnsyncAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to unsync all: %w", err)
			}
			color.Yellow("✗ %s", report.Summary())
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("provide a range ID or --all")
		}

		report, err := eng.Unsync(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to unsync range: %w", err)
		}
		color.Yellow("✗ %s", report.Summary())
		return nil
	},
}

func init() {
	unsyncCmd.Flags().BoolVar(&unsyncAll, "all", false, "undo every synced range")
	rootCmd.AddCommand(unsyncCmd)
}
