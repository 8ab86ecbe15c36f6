// ABOUTME: Engine owns the session cache and sync ledger behind one service object.
// ABOUTME: Callers get stats, charts, and sync operations through explicit state.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/calendar"
	"github.com/KishParikh13/HealthToCalendar/internal/health"
	"github.com/KishParikh13/HealthToCalendar/internal/ledger"
	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/KishParikh13/HealthToCalendar/internal/stats"
)

// Engine is the long-lived service object holding all mutable engine state:
// the session result cache and the persisted sync ledger. Construct once and
// pass by reference; there is no ambient global state.
type Engine struct {
	registry *models.Registry
	source   health.SampleSource
	sink     calendar.RecordSink
	cache    *stats.Cache
	ledger   *ledger.Ledger

	// enabled lists the categories a sync materializes. Defaults to the
	// whole registry.
	enabled []models.Category
}

// New creates an engine. A nil or empty enabled list means every registry
// category participates in syncs.
func New(registry *models.Registry, source health.SampleSource, sink calendar.RecordSink, led *ledger.Ledger, enabled []models.Category) *Engine {
	if len(enabled) == 0 {
		enabled = registry.All()
	}
	return &Engine{
		registry: registry,
		source:   source,
		sink:     sink,
		cache:    stats.NewCache(),
		ledger:   led,
		enabled:  enabled,
	}
}

// Registry returns the category catalog.
func (e *Engine) Registry() *models.Registry {
	return e.registry
}

// Stats returns the period statistics for one category over [start, end),
// consulting the session cache first. The second return is false when the
// range has no data.
func (e *Engine) Stats(ctx context.Context, category string, start, end time.Time) (models.PeriodStats, bool, error) {
	cat, ok := e.registry.Get(category)
	if !ok {
		return models.PeriodStats{}, false, fmt.Errorf("unknown category: %s", category)
	}

	key := stats.StatsKey(cat.Name, start, end)
	if cached, hit := e.cache.GetStats(key); hit {
		return cached, true, nil
	}

	samples, err := e.source.Fetch(ctx, cat, start, end)
	if err != nil {
		return models.PeriodStats{}, false, fmt.Errorf("fetch %s samples: %w", cat.Name, err)
	}

	result, present, err := stats.Reduce(cat, samples, start, end)
	if err != nil {
		return models.PeriodStats{}, false, err
	}
	if present {
		e.cache.PutStats(key, result)
	}
	return result, present, nil
}

// Chart returns the fixed-width bucket series for one category, consulting
// the session cache first.
func (e *Engine) Chart(ctx context.Context, category string, start, end time.Time, hourly bool) ([]models.ChartPoint, error) {
	cat, ok := e.registry.Get(category)
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	key := stats.ChartKey(cat.Name, start, end, hourly)
	if cached, hit := e.cache.GetChart(key); hit {
		return cached, nil
	}

	fetchEnd := end
	if hourly {
		fetchEnd = models.DayStart(start).AddDate(0, 0, 1)
	}
	samples, err := e.source.Fetch(ctx, cat, models.DayStart(start), fetchEnd)
	if err != nil {
		return nil, fmt.Errorf("fetch %s samples: %w", cat.Name, err)
	}

	points, err := stats.Bin(cat, samples, start, end, hourly)
	if err != nil {
		return nil, err
	}
	e.cache.PutChart(key, points)
	return points, nil
}

// MonthlyStats computes stats for every registry category over the range.
// Fetches run sequentially; the result is reported only after every
// category has completed or definitively failed.
func (e *Engine) MonthlyStats(ctx context.Context, start, end time.Time) (map[string]models.PeriodStats, error) {
	out := make(map[string]models.PeriodStats)
	for _, cat := range e.registry.All() {
		s, present, err := e.Stats(ctx, cat.Name, start, end)
		if err != nil {
			return nil, err
		}
		if present {
			out[cat.Name] = s
		}
	}
	return out, nil
}

// DaysWithData returns the calendar days in [start, end) on which any
// registry category has data, ascending.
func (e *Engine) DaysWithData(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	seen := make(map[time.Time]struct{})
	for _, cat := range e.registry.All() {
		samples, err := e.source.Fetch(ctx, cat, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch %s samples: %w", cat.Name, err)
		}
		for _, s := range samples {
			if s.Value != nil && *s.Value == 0 {
				continue
			}
			seen[models.DayStart(s.Start)] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// Sync projects the range's samples into calendar records for the enabled
// categories. Idempotent per exact range; see ledger.Ledger.Sync.
func (e *Engine) Sync(ctx context.Context, start, end time.Time) (*ledger.SyncReport, error) {
	return e.ledger.Sync(ctx, start, end, e.enabled, e.source, e.sink)
}

// PreviewSync lists the records a sync of the range would create.
func (e *Engine) PreviewSync(ctx context.Context, start, end time.Time) ([]models.PreviewRecord, error) {
	return e.ledger.Preview(ctx, start, end, e.enabled, e.source)
}

// Unsync removes one synced range and best-effort deletes its records.
func (e *Engine) Unsync(ctx context.Context, idOrPrefix string) (*ledger.DeleteReport, error) {
	return e.ledger.DeleteRange(ctx, idOrPrefix, e.sink)
}

// UnsyncAll removes every synced range and best-effort deletes all records.
func (e *Engine) UnsyncAll(ctx context.Context) (*ledger.DeleteReport, error) {
	return e.ledger.DeleteAll(ctx, e.sink)
}

// Synced lists the synced ranges, most recent first.
func (e *Engine) Synced() []*models.SyncedRange {
	return e.ledger.Entries()
}

// IsRangeSynced reports whether the exact range was already synced.
func (e *Engine) IsRangeSynced(start, end time.Time) (*models.SyncedRange, bool) {
	return e.ledger.IsRangeSynced(start, end)
}

// ClearCache drops every session-cached result. Callers invalidate this way
// after the underlying sample data changes.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}
