// ABOUTME: CLI commands for managing raw health samples.
// ABOUTME: Provides add, list, delete, export, and import subcommands.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sampleAt       string
	sampleDuration int
	sampleDetail   string
	sampleAllDay   bool

	sampleListCategory string
	sampleListLimit    int
)

var sampleCmd = &cobra.Command{
	Use:     "sample",
	Aliases: []string{"samples"},
	Short:   "Manage raw health samples",
}

var sampleAddCmd = &cobra.Command{
	Use:   "add <category> [value]",
	Short: "Add a raw sample",
	Long: `Add a raw health sample to the local store.

The value is required for quantity categories (steps, weight, water, ...).
Duration categories (sleep, mindfulness) take --duration in minutes
instead; workouts need neither, just an optional --detail.

EXAMPLES:

  healthcal sample add steps 2400 --at "2025-03-10 08:00"
  healthcal sample add weight 82.5
  healthcal sample add sleep --at "2025-03-09 23:00" --duration 480
  healthcal sample add workouts --detail "morning run" --duration 30`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := args[0]
		if !models.IsValidCategoryName(category) {
			return fmt.Errorf("unknown category: %s\nValid categories: %s",
				category, strings.Join(models.DefaultRegistry().Names(), ", "))
		}

		start := time.Now()
		if sampleAt != "" {
			t, err := parseSampleTime(sampleAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", sampleAt)
			}
			start = t
		}
		end := start
		if sampleDuration > 0 {
			end = start.Add(time.Duration(sampleDuration) * time.Minute)
		}

		sample := models.NewSample(start, end, sampleDetail)
		if sampleAllDay {
			sample.WithAllDay()
		}
		if len(args) == 2 {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value: %s", args[1])
			}
			sample.WithValue(value)
		}

		if err := samples.AddSample(category, sample); err != nil {
			return fmt.Errorf("failed to add sample: %w", err)
		}

		color.Green("✓ Added %s sample", category)
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(sample.ID.String()[:8]),
			describeSample(category, sample))
		return nil
	},
}

var sampleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List raw samples",
	Long: `List recent raw samples, newest first.

Each line shows: ID  START  CATEGORY  VALUE/DURATION  (DETAIL)

The ID is an 8-character prefix you can use with 'sample delete'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sampleListCategory != "" && !models.IsValidCategoryName(sampleListCategory) {
			return fmt.Errorf("unknown category: %s", sampleListCategory)
		}

		list, categories, err := samples.ListSamples(sampleListCategory, sampleListLimit)
		if err != nil {
			return fmt.Errorf("failed to list samples: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No samples found.")
			return nil
		}

		faint := color.New(color.Faint)
		for i, s := range list {
			detail := ""
			if s.Detail != "" {
				detail = faint.Sprintf(" (%s)", truncate(s.Detail, 30))
			}
			fmt.Printf("%s %s %s %s%s\n",
				faint.Sprint(s.ID.String()[:8]),
				faint.Sprint(s.Start.Format("2006-01-02 15:04")),
				padRight(categories[i], 14),
				describeSample(categories[i], s),
				detail)
		}
		return nil
	},
}

var sampleDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a raw sample",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sample, category, err := samples.GetSample(args[0])
		if err != nil {
			return fmt.Errorf("sample not found: %s", args[0])
		}

		if err := samples.DeleteSample(args[0]); err != nil {
			return fmt.Errorf("failed to delete sample: %w", err)
		}
		eng.ClearCache()

		color.Yellow("✗ Deleted %s sample", category)
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(sample.ID.String()[:8]),
			describeSample(category, sample))
		return nil
	},
}

var sampleExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all samples as JSON",
	Long:  `Export every sample as JSON, to stdout or to a file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return samples.ExportJSON(os.Stdout)
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer f.Close()

		if err := samples.ExportJSON(f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		color.Green("✓ Exported to %s", args[0])
		return nil
	},
}

var sampleImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import samples from a JSON export",
	Long: `Import samples from a JSON export file.

Samples whose IDs already exist locally are skipped, so re-importing the
same file is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		count, err := samples.ImportJSON(f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		eng.ClearCache()

		color.Green("✓ Imported %d samples", count)
		return nil
	},
}

// describeSample renders a sample's magnitude for display: its value,
// or its duration when the category aggregates intervals.
func describeSample(category string, s *models.RawSample) string {
	cat, ok := models.DefaultRegistry().Get(category)
	if ok && cat.Kind == models.KindDurationFromIntervals {
		return fmt.Sprintf("%dm", int(s.Duration().Minutes()))
	}
	if s.Value != nil {
		unit := ""
		if ok {
			unit = " " + cat.Unit
		}
		return strconv.FormatFloat(*s.Value, 'f', -1, 64) + unit
	}
	if d := s.Duration(); d > 0 {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return "-"
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func parseSampleTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	sampleAddCmd.Flags().StringVar(&sampleAt, "at", "", "start timestamp (YYYY-MM-DD HH:MM)")
	sampleAddCmd.Flags().IntVar(&sampleDuration, "duration", 0, "interval length in minutes")
	sampleAddCmd.Flags().StringVar(&sampleDetail, "detail", "", "free-text detail for the sample")
	sampleAddCmd.Flags().BoolVar(&sampleAllDay, "all-day", false, "mark as an all-day sample")

	sampleListCmd.Flags().StringVarP(&sampleListCategory, "category", "c", "", "filter by category")
	sampleListCmd.Flags().IntVarP(&sampleListLimit, "limit", "n", 20, "max number of results")

	sampleCmd.AddCommand(sampleAddCmd)
	sampleCmd.AddCommand(sampleListCmd)
	sampleCmd.AddCommand(sampleDeleteCmd)
	sampleCmd.AddCommand(sampleExportCmd)
	sampleCmd.AddCommand(sampleImportCmd)
	rootCmd.AddCommand(sampleCmd)
}
