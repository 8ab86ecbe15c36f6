// ABOUTME: Tests for RawSample and calendar-day helpers.
// ABOUTME: Validates constructor, duration, and day normalization.
package models

import (
	"testing"
	"time"
)

func TestNewSample(t *testing.T) {
	start := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)

	s := NewSample(start, end, "45 min run").WithValue(5.2)

	if s.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if s.Duration() != 45*time.Minute {
		t.Errorf("Duration = %v, want 45m", s.Duration())
	}
	if s.Value == nil || *s.Value != 5.2 {
		t.Errorf("Value = %v, want 5.2", s.Value)
	}
	if s.AllDay {
		t.Error("expected AllDay to default to false")
	}
}

func TestDayStart(t *testing.T) {
	in := time.Date(2025, 3, 10, 17, 42, 9, 123, time.UTC)
	got := DayStart(in)
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayStart = %v, want %v", got, want)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)
	b := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("expected a and b on the same day")
	}
	if SameDay(b, c) {
		t.Error("expected b and c on different days")
	}
}
