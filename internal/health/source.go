// ABOUTME: SampleSource contract for health-data providers.
// ABOUTME: Defines the fetch interface the aggregation and sync engine consumes.
package health

import (
	"context"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// SampleSource yields raw samples for a category over a date range.
//
// Fetch is end-exclusive and returns an empty slice, not an error, when no
// data exists. Provider failures are reported as errors so callers can
// distinguish "no data" from "query failed" and choose to retry or degrade.
type SampleSource interface {
	Fetch(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error)

	// FetchAggregatedDaily returns one all-day sample per day with a nonzero
	// value sum, for categories whose natural unit is a daily cumulative amount.
	FetchAggregatedDaily(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error)
}
