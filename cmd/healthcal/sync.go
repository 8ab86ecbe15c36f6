// ABOUTME: CLI command for syncing a date range into calendar records.
// ABOUTME: Supports preview mode and reports partial creation failures.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncPreview bool

var syncCmd = &cobra.Command{
	Use:   "sync <start> [end]",
	Short: "Project a date range into calendar records",
	Long: `Project health samples in a date range into calendar records.

Both dates are inclusive days (YYYY-MM-DD); omitting the end date syncs a
single day. Syncing an exact range that was already synced is a no-op and
reports the prior sync. Individual record failures do not abort the sync;
they are counted and reported.

Use --preview to list the records a sync would create without creating
anything or touching the ledger.

EXAMPLES:

  healthcal sync 2025-03-10                   # One day
  healthcal sync 2025-03-01 2025-03-07        # One week
  healthcal sync 2025-03-01 2025-03-07 --preview`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseDayFlag(args[0])
		if err != nil {
			return err
		}
		end := start
		if len(args) == 2 {
			end, err = parseDayFlag(args[1])
			if err != nil {
				return err
			}
		}
		if end.Before(start) {
			return fmt.Errorf("end date %s is before start date %s", args[len(args)-1], args[0])
		}

		ctx := cmd.Context()

		if syncPreview {
			records, err := eng.PreviewSync(ctx, start, end)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No records would be created.")
				return nil
			}
			faint := color.New(color.Faint)
			for _, r := range records {
				fmt.Printf("%s %s  %s  %s\n", r.Emoji, r.Category, faint.Sprint(r.Span), r.Detail)
			}
			fmt.Printf("\n%d records would be created.\n", len(records))
			return nil
		}

		report, err := eng.Sync(ctx, start, end)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		if report.AlreadySynced {
			color.Yellow("• %s", report.Summary())
			return nil
		}
		if report.Failed > 0 {
			color.Yellow("⚠ %s", report.Summary())
		} else {
			color.Green("✓ %s", report.Summary())
		}
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(report.Range.ID.String()[:8]))
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncPreview, "preview", false, "show what would be created without creating it")
	rootCmd.AddCommand(syncCmd)
}
