// ABOUTME: ChartBinner buckets raw samples into a fixed-width time series.
// ABOUTME: Hourly for single-day windows (24 points), daily otherwise; gap-free.
package stats

import (
	"fmt"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// Bin converts samples into an ordered, zero-filled bucket series.
//
// When hourly is true the window is the calendar day containing start and
// exactly 24 points are produced, labeled "12AM" through "11PM". Otherwise
// one point per calendar day in [start, end) is produced, labeled "M/d".
// Buckets with no qualifying samples carry value 0 and are never dropped,
// so callers can rely on a stable-width series.
func Bin(cat models.Category, samples []*models.RawSample, start, end time.Time, hourly bool) ([]models.ChartPoint, error) {
	if !cat.Kind.Valid() {
		return nil, fmt.Errorf("unknown aggregation kind %q for category %s", cat.Kind, cat.Name)
	}

	if hourly {
		return binHourly(cat, samples, start), nil
	}
	return binDaily(cat, samples, start, end), nil
}

func binHourly(cat models.Category, samples []*models.RawSample, start time.Time) []models.ChartPoint {
	day := models.DayStart(start)
	points := make([]models.ChartPoint, 0, 24)
	for h := 0; h < 24; h++ {
		bucket := day.Add(time.Duration(h) * time.Hour)
		points = append(points, models.ChartPoint{
			Timestamp: bucket,
			Value:     bucketValue(cat, samples, bucket, bucket.Add(time.Hour)),
			Label:     bucket.Format("3PM"),
		})
	}
	return points
}

func binDaily(cat models.Category, samples []*models.RawSample, start, end time.Time) []models.ChartPoint {
	var points []models.ChartPoint
	for day := models.DayStart(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		points = append(points, models.ChartPoint{
			Timestamp: day,
			Value:     bucketValue(cat, samples, day, day.AddDate(0, 0, 1)),
			Label:     fmt.Sprintf("%d/%d", int(day.Month()), day.Day()),
		})
	}
	return points
}

// bucketValue aggregates the samples starting inside [from, to) using the
// category's kind-specific rule.
func bucketValue(cat models.Category, samples []*models.RawSample, from, to time.Time) float64 {
	var sum float64
	var count, valued int
	var minutes float64

	for _, s := range samples {
		if s.Start.Before(from) || !s.Start.Before(to) {
			continue
		}
		count++
		minutes += s.End.Sub(s.Start).Minutes()
		if s.Value != nil {
			sum += *s.Value
			valued++
		}
	}

	switch cat.Kind {
	case models.KindEventCount:
		return float64(count)
	case models.KindDurationFromIntervals:
		return minutes
	case models.KindDiscreteAverage:
		if valued == 0 {
			return 0
		}
		return sum / float64(valued)
	default: // KindCumulativeSum
		return sum
	}
}
