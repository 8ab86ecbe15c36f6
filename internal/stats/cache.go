// ABOUTME: Session-scoped memoization of reducer and binner results.
// ABOUTME: Keys normalize dates to day precision; cleared only explicitly.
package stats

import (
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// Key identifies one cached computation. Date components are normalized to
// day precision so two ranges that differ only in time-of-day collide.
type Key struct {
	Category    string
	Start       string
	End         string
	Granularity string
}

// StatsKey builds the cache key for a PeriodStats computation.
func StatsKey(cat string, start, end time.Time) Key {
	return Key{Category: cat, Start: dayKey(start), End: dayKey(end)}
}

// ChartKey builds the cache key for a chart computation.
func ChartKey(cat string, start, end time.Time, hourly bool) Key {
	g := "daily"
	if hourly {
		g = "hourly"
	}
	return Key{Category: cat, Start: dayKey(start), End: dayKey(end), Granularity: g}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Cache memoizes engine results for the lifetime of a session. It is not
// thread-safe by contract: a concurrent miss may recompute, which is
// acceptable because the underlying computations are pure.
type Cache struct {
	stats  map[Key]models.PeriodStats
	charts map[Key][]models.ChartPoint
}

// NewCache creates an empty session cache.
func NewCache() *Cache {
	return &Cache{
		stats:  make(map[Key]models.PeriodStats),
		charts: make(map[Key][]models.ChartPoint),
	}
}

// GetStats returns a cached PeriodStats, if present.
func (c *Cache) GetStats(k Key) (models.PeriodStats, bool) {
	s, ok := c.stats[k]
	return s, ok
}

// PutStats stores a PeriodStats result.
func (c *Cache) PutStats(k Key, s models.PeriodStats) {
	c.stats[k] = s
}

// GetChart returns a cached chart series, if present.
func (c *Cache) GetChart(k Key) ([]models.ChartPoint, bool) {
	p, ok := c.charts[k]
	return p, ok
}

// PutChart stores a chart series.
func (c *Cache) PutChart(k Key, points []models.ChartPoint) {
	c.charts[k] = points
}

// Clear drops every cached entry. Callers invalidate the session this way
// after the underlying data changes.
func (c *Cache) Clear() {
	c.stats = make(map[Key]models.PeriodStats)
	c.charts = make(map[Key][]models.ChartPoint)
}

// Len returns the number of cached entries across both result types.
func (c *Cache) Len() int {
	return len(c.stats) + len(c.charts)
}
