// ABOUTME: StatsReducer converts raw samples for one category/range into PeriodStats.
// ABOUTME: Branches on aggregation kind; pure function of inputs plus format table.
package stats

import (
	"fmt"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// Reduce computes PeriodStats for the samples of one category over
// [start, end). The second return is false when the range has no data
// (an absent result, not an error).
//
// Zero-suppression: for quantity kinds a day counts toward UnitsWithData
// only when its bucketed value is strictly positive. A reading of zero and
// no reading at all are deliberately indistinguishable here.
func Reduce(cat models.Category, samples []*models.RawSample, start, end time.Time) (models.PeriodStats, bool, error) {
	switch cat.Kind {
	case models.KindEventCount:
		return reduceEvents(cat, samples), len(samples) > 0, nil
	case models.KindDurationFromIntervals:
		return reduceDurations(cat, samples), len(samples) > 0, nil
	case models.KindCumulativeSum, models.KindDiscreteAverage:
		s, ok := reduceQuantities(cat, samples, start, end)
		return s, ok, nil
	default:
		return models.PeriodStats{}, false, fmt.Errorf("unknown aggregation kind %q for category %s", cat.Kind, cat.Name)
	}
}

func reduceEvents(cat models.Category, samples []*models.RawSample) models.PeriodStats {
	count := len(samples)
	if count == 0 {
		return models.PeriodStats{}
	}
	return models.PeriodStats{
		TotalValue:     float64(count),
		AverageValue:   0,
		UnitsWithData:  count,
		FormattedTotal: FormatEventCount(cat, count),
		UnitName:       cat.Unit,
	}
}

func reduceDurations(cat models.Category, samples []*models.RawSample) models.PeriodStats {
	if len(samples) == 0 {
		return models.PeriodStats{}
	}

	var total float64
	days := make(map[string]struct{})
	for _, s := range samples {
		total += s.End.Sub(s.Start).Minutes()
		days[s.Start.Format("2006-01-02")] = struct{}{}
	}

	units := len(days)
	var avg float64
	if units > 0 {
		avg = total / float64(units)
	}

	return models.PeriodStats{
		TotalValue:       total,
		AverageValue:     avg,
		UnitsWithData:    units,
		FormattedTotal:   FormatMinutes(total),
		FormattedAverage: FormatMinutes(avg),
		UnitName:         cat.Unit,
	}
}

// reduceQuantities buckets samples into one-day windows anchored to the day
// containing start, then combines the contributing (strictly positive) days.
func reduceQuantities(cat models.Category, samples []*models.RawSample, start, end time.Time) (models.PeriodStats, bool) {
	var contributing []float64

	for day := models.DayStart(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)

		var sum float64
		var n int
		for _, s := range samples {
			if s.Value == nil || s.Start.Before(day) || !s.Start.Before(next) {
				continue
			}
			sum += *s.Value
			n++
		}

		var v float64
		if cat.Kind == models.KindDiscreteAverage {
			if n > 0 {
				v = sum / float64(n)
			}
		} else {
			v = sum
		}

		if v > 0 {
			contributing = append(contributing, v)
		}
	}

	if len(contributing) == 0 {
		return models.PeriodStats{}, false
	}

	units := len(contributing)
	var sum float64
	for _, v := range contributing {
		sum += v
	}

	var total, avg float64
	if cat.Kind == models.KindDiscreteAverage {
		total = sum / float64(units)
		avg = total
	} else {
		total = sum
		avg = total / float64(units)
	}

	return models.PeriodStats{
		TotalValue:       total,
		AverageValue:     avg,
		UnitsWithData:    units,
		FormattedTotal:   FormatValue(cat, total),
		FormattedAverage: FormatValue(cat, avg),
		UnitName:         cat.Unit,
	}, true
}
