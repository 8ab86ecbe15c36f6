// ABOUTME: CLI command for aggregated statistics over a date range.
// ABOUTME: Shows one category or every category with data.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	statsFrom string
	statsTo   string
)

var statsCmd = &cobra.Command{
	Use:     "stats [category]",
	Aliases: []string{"s"},
	Short:   "Show aggregated statistics",
	Long: `Show aggregated statistics for a date range.

With a category argument, shows that category's totals. Without one,
shows every category that has data in the range.

Cumulative categories (steps, distance, water) report the sum; averaged
categories (weight, heart_rate) report the per-day mean; duration
categories (sleep, mindfulness) report total and per-day time; workouts
report a count. Days where a category reads zero do not count as days
with data.

EXAMPLES:

  healthcal stats                             # All categories, last 30 days
  healthcal stats steps                       # One category, last 30 days
  healthcal stats sleep --from 2025-03-01 --to 2025-03-31`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := resolveRange(statsFrom, statsTo)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		faint := color.New(color.Faint)

		if len(args) == 1 {
			category := args[0]
			result, present, err := eng.Stats(ctx, category, start, end)
			if err != nil {
				return err
			}
			if !present {
				fmt.Printf("No %s data between %s and %s.\n",
					category, start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02"))
				return nil
			}
			cat, _ := eng.Registry().Get(category)
			printStats(cat.Emoji, cat.Label(), result.FormattedTotal, result.FormattedAverage, result.UnitsWithData)
			return nil
		}

		byCategory, err := eng.MonthlyStats(ctx, start, end)
		if err != nil {
			return err
		}
		if len(byCategory) == 0 {
			fmt.Println("No data in range.")
			return nil
		}

		fmt.Printf("%s\n", faint.Sprintf("%s – %s",
			start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02")))
		for _, cat := range eng.Registry().All() {
			result, ok := byCategory[cat.Name]
			if !ok {
				continue
			}
			printStats(cat.Emoji, cat.Label(), result.FormattedTotal, result.FormattedAverage, result.UnitsWithData)
		}
		return nil
	},
}

func printStats(emoji, label, total, average string, days int) {
	fmt.Printf("%s %s: %s total, %s avg %s\n",
		emoji,
		color.New(color.Bold).Sprint(label),
		total,
		average,
		color.New(color.Faint).Sprintf("(%d days with data)", days))
}

// resolveRange turns inclusive --from/--to day flags into a half-open
// [start, end) window, defaulting to the last 30 days.
func resolveRange(from, to string) (time.Time, time.Time, error) {
	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -30)

	if from != "" {
		t, err := parseDayFlag(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if to != "" {
		t, err := parseDayFlag(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must not be before --from")
	}
	return start, end, nil
}

func parseDayFlag(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "first day of the range (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "last day of the range, inclusive (YYYY-MM-DD)")
	rootCmd.AddCommand(statsCmd)
}
