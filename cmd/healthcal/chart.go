// ABOUTME: CLI command for rendering bucket charts in the terminal.
// ABOUTME: Draws hourly or daily bar charts with gap-free buckets.
package main

import (
	"fmt"
	"strings"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	chartFrom   string
	chartTo     string
	chartHourly bool
)

const chartBarWidth = 40

var chartCmd = &cobra.Command{
	Use:   "chart <category>",
	Short: "Render a bar chart for one category",
	Long: `Render a terminal bar chart for one category over a date range.

The series is gap-free: hourly charts always have 24 buckets covering the
first day of the range, daily charts have one bucket per day. Buckets
without data render as zero-height bars.

EXAMPLES:

  healthcal chart steps                       # Daily, last 30 days
  healthcal chart steps --hourly              # 24 hourly buckets for today
  healthcal chart sleep --from 2025-03-01 --to 2025-03-07`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := resolveRange(chartFrom, chartTo)
		if err != nil {
			return err
		}

		points, err := eng.Chart(cmd.Context(), args[0], start, end, chartHourly)
		if err != nil {
			return err
		}

		cat, _ := eng.Registry().Get(args[0])
		fmt.Printf("%s %s\n", cat.Emoji, color.New(color.Bold).Sprint(cat.Label()))
		fmt.Print(renderChart(points))
		return nil
	},
}

// renderChart draws one line per bucket, scaled to the series maximum.
func renderChart(points []models.ChartPoint) string {
	var max float64
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}

	faint := color.New(color.Faint)
	var b strings.Builder
	for _, p := range points {
		width := 0
		if max > 0 {
			width = int(p.Value / max * chartBarWidth)
		}
		if p.Value > 0 && width == 0 {
			width = 1
		}
		fmt.Fprintf(&b, "%5s %s %s\n",
			p.Label,
			strings.Repeat("█", width),
			faint.Sprintf("%.1f", p.Value))
	}
	return b.String()
}

func init() {
	chartCmd.Flags().StringVar(&chartFrom, "from", "", "first day of the range (YYYY-MM-DD)")
	chartCmd.Flags().StringVar(&chartTo, "to", "", "last day of the range, inclusive (YYYY-MM-DD)")
	chartCmd.Flags().BoolVar(&chartHourly, "hourly", false, "24 hourly buckets instead of daily")
	rootCmd.AddCommand(chartCmd)
}
