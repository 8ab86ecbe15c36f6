// ABOUTME: Core data types for the aggregation and sync engine.
// ABOUTME: Defines RawSample, PeriodStats, ChartPoint, SyncedRange, PreviewRecord.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RawSample is one observed health-activity interval with an optional value.
// End is never before Start.
type RawSample struct {
	ID     uuid.UUID `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`
	Detail string    `json:"detail"`
	Value  *float64  `json:"value,omitempty"`
}

// NewSample creates a RawSample with a generated UUID.
func NewSample(start, end time.Time, detail string) *RawSample {
	return &RawSample{
		ID:     uuid.New(),
		Start:  start,
		End:    end,
		Detail: detail,
	}
}

// WithValue sets the numeric value on the sample.
func (s *RawSample) WithValue(v float64) *RawSample {
	s.Value = &v
	return s
}

// WithAllDay marks the sample as an all-day entry.
func (s *RawSample) WithAllDay() *RawSample {
	s.AllDay = true
	return s
}

// Duration returns the sample's interval length.
func (s *RawSample) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// PeriodStats is the reduced total/average/day-count summary for one
// category over a date range. Derived, session-scoped, never persisted.
type PeriodStats struct {
	TotalValue       float64
	AverageValue     float64
	UnitsWithData    int
	FormattedTotal   string
	FormattedAverage string
	UnitName         string
}

// ChartPoint is one bucket (hour or day) of a fixed-width time series.
type ChartPoint struct {
	Timestamp time.Time
	Value     float64
	Label     string
}

// SyncedRange records that one date range was projected into external
// calendar records. Persisted in the sync ledger.
/// Invariant: len(RecordIDs) == RecordCount.
type SyncedRange struct {
	ID          uuid.UUID `json:"id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	SyncedAt    time.Time `json:"synced_at"`
	RecordCount int       `json:"record_count"`
	RecordIDs   []string  `json:"record_ids"`
}

// PreviewRecord describes one calendar record a sync would create,
// without creating it.
type PreviewRecord struct {
	Emoji    string
	Category string
	Span     string
	Detail   string
}

// DayStart returns midnight of the day containing t, in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
