// ABOUTME: Category-aware number and duration formatting.
// ABOUTME: Applies each category's decimal/grouping spec to totals and averages.
package stats

import (
	"fmt"
	"strconv"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/dustin/go-humanize"
)

// FormatValue renders v using the category's decimal and grouping settings.
func FormatValue(cat models.Category, v float64) string {
	if cat.Grouping {
		return humanize.CommafWithDigits(v, cat.Decimals)
	}
	return strconv.FormatFloat(v, 'f', cat.Decimals, 64)
}

// FormatMinutes renders a minute total as "1h 40m", or "40m" when under an hour.
func FormatMinutes(minutes float64) string {
	total := int(minutes)
	h := total / 60
	m := total % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatEventCount renders an event total with a pluralized unit label.
func FormatEventCount(cat models.Category, count int) string {
	unit := cat.Unit
	if count != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", count, unit)
}
