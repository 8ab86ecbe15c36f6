// ABOUTME: CLI command for listing previously synced ranges.
// ABOUTME: Shows ledger entries most recent first with their record counts.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncedCmd = &cobra.Command{
	Use:   "synced",
	Short: "List synced date ranges",
	Long: `List previously synced date ranges, most recent first.

Each line shows: ID  START – END  SYNCED-AT  RECORDS

The ID is an 8-character prefix you can pass to 'healthcal unsync'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ranges := eng.Synced()
		if len(ranges) == 0 {
			fmt.Println("No synced ranges.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range ranges {
			fmt.Printf("%s %s – %s %s %d records\n",
				faint.Sprint(r.ID.String()[:8]),
				r.StartDate.Format("2006-01-02"),
				r.EndDate.Format("2006-01-02"),
				faint.Sprintf("synced %s", r.SyncedAt.Format("2006-01-02 15:04")),
				r.RecordCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncedCmd)
}
