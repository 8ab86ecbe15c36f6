// ABOUTME: Tests for the engine's cache-through reads and sync wrappers.
// ABOUTME: Verifies memoization, invalidation, multi-category aggregation, prompts.
package engine

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/ledger"
	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// countingSource serves canned samples and counts fetches per category.
type countingSource struct {
	samples map[string][]*models.RawSample
	fetches map[string]int
	err     error
}

func newCountingSource() *countingSource {
	return &countingSource{
		samples: make(map[string][]*models.RawSample),
		fetches: make(map[string]int),
	}
}

func (s *countingSource) add(category string, sample *models.RawSample) {
	s.samples[category] = append(s.samples[category], sample)
}

func (s *countingSource) Fetch(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.fetches[cat.Name]++
	var out []*models.RawSample
	for _, smp := range s.samples[cat.Name] {
		if !smp.Start.Before(start) && smp.Start.Before(end) {
			out = append(out, smp)
		}
	}
	return out, nil
}

func (s *countingSource) FetchAggregatedDaily(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error) {
	return s.Fetch(ctx, cat, start, end)
}

// nullSink creates records with sequential IDs and never fails.
type nullSink struct {
	created int
	deleted int
}

func (s *nullSink) Create(ctx context.Context, sample *models.RawSample, cat models.Category) (string, error) {
	s.created++
	return fmt.Sprintf("rec-%d", s.created), nil
}

func (s *nullSink) Delete(ctx context.Context, recordID string) error {
	s.deleted++
	return nil
}

// memStore is an in-memory blob store for ledger persistence.
type memStore struct{ blobs map[string][]byte }

func (m *memStore) GetBlob(key string) ([]byte, bool, error) {
	data, ok := m.blobs[key]
	return data, ok, nil
}

func (m *memStore) SetBlob(key string, data []byte) error {
	m.blobs[key] = data
	return nil
}

func (m *memStore) Close() error { return nil }

func setupEngine(t *testing.T) (*Engine, *countingSource, *nullSink) {
	t.Helper()
	source := newCountingSource()
	sink := &nullSink{}
	led, err := ledger.Load(&memStore{blobs: make(map[string][]byte)})
	if err != nil {
		t.Fatalf("ledger.Load failed: %v", err)
	}
	return New(models.DefaultRegistry(), source, sink, led, nil), source, sink
}

func valueSample(at time.Time, v float64) *models.RawSample {
	return models.NewSample(at, at, "").WithValue(v)
}

func TestStatsCachesSecondRead(t *testing.T) {
	e, source, _ := setupEngine(t)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	source.add("steps", valueSample(start.Add(9*time.Hour), 4000))

	first, ok, err := e.Stats(context.Background(), "steps", start, end)
	if err != nil || !ok {
		t.Fatalf("Stats = (%v, %v), want present", ok, err)
	}
	second, ok, err := e.Stats(context.Background(), "steps", start, end)
	if err != nil || !ok {
		t.Fatalf("cached Stats = (%v, %v), want present", ok, err)
	}

	if source.fetches["steps"] != 1 {
		t.Errorf("fetches = %d, want 1 (second read served from cache)", source.fetches["steps"])
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestClearCacheForcesRefetch(t *testing.T) {
	e, source, _ := setupEngine(t)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	source.add("steps", valueSample(start.Add(9*time.Hour), 4000))

	if _, _, err := e.Stats(context.Background(), "steps", start, end); err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	e.ClearCache()
	if _, _, err := e.Stats(context.Background(), "steps", start, end); err != nil {
		t.Fatalf("Stats after clear failed: %v", err)
	}
	if source.fetches["steps"] != 2 {
		t.Errorf("fetches = %d, want 2 after ClearCache", source.fetches["steps"])
	}
}

func TestChartCachedAndZeroFilled(t *testing.T) {
	e, source, _ := setupEngine(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	source.add("steps", valueSample(day.Add(7*time.Hour), 400))

	points, err := e.Chart(context.Background(), "steps", day, day.AddDate(0, 0, 1), true)
	if err != nil {
		t.Fatalf("Chart failed: %v", err)
	}
	if len(points) != 24 {
		t.Fatalf("len(points) = %d, want 24", len(points))
	}
	if points[7].Value != 400 {
		t.Errorf("7AM bucket = %f, want 400", points[7].Value)
	}

	if _, err := e.Chart(context.Background(), "steps", day, day.AddDate(0, 0, 1), true); err != nil {
		t.Fatalf("cached Chart failed: %v", err)
	}
	if source.fetches["steps"] != 1 {
		t.Errorf("fetches = %d, want 1", source.fetches["steps"])
	}
}

func TestStatsUnknownCategory(t *testing.T) {
	e, _, _ := setupEngine(t)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, _, err := e.Stats(context.Background(), "nonsense", start, start.AddDate(0, 0, 1)); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestMonthlyStatsSkipsEmptyCategories(t *testing.T) {
	e, source, _ := setupEngine(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	source.add("steps", valueSample(start.Add(9*time.Hour), 4000))
	at := start.Add(20 * time.Hour)
	source.add("sleep", models.NewSample(at, at.Add(7*time.Hour), "slept"))

	got, err := e.MonthlyStats(context.Background(), start, end)
	if err != nil {
		t.Fatalf("MonthlyStats failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 categories with data", len(got))
	}
	if _, ok := got["weight"]; ok {
		t.Error("expected no entry for empty category")
	}
}

func TestDaysWithData(t *testing.T) {
	e, source, _ := setupEngine(t)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	source.add("steps", valueSample(start.Add(9*time.Hour), 100))
	source.add("steps", valueSample(start.AddDate(0, 0, 2).Add(9*time.Hour), 0)) // zero reading
	at := start.AddDate(0, 0, 4)
	source.add("workouts", models.NewSample(at, at.Add(time.Hour), "run"))

	days, err := e.DaysWithData(context.Background(), start, end)
	if err != nil {
		t.Fatalf("DaysWithData failed: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}
	if !days[0].Equal(start) || !days[1].Equal(start.AddDate(0, 0, 4)) {
		t.Errorf("days = %v, want [%v %v]", days, start, start.AddDate(0, 0, 4))
	}
}

func TestSyncAndUnsyncThroughEngine(t *testing.T) {
	e, source, sink := setupEngine(t)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	source.add("steps", valueSample(start.Add(9*time.Hour), 4000))

	report, err := e.Sync(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if report.Created != 1 || sink.created != 1 {
		t.Errorf("created = %d (sink %d), want 1", report.Created, sink.created)
	}
	if len(e.Synced()) != 1 {
		t.Errorf("Synced() len = %d, want 1", len(e.Synced()))
	}

	if _, err := e.Unsync(context.Background(), report.Range.ID.String()); err != nil {
		t.Fatalf("Unsync failed: %v", err)
	}
	if sink.deleted != 1 {
		t.Errorf("sink deleted = %d, want 1", sink.deleted)
	}
	if _, ok := e.IsRangeSynced(start, end); ok {
		t.Error("range still synced after Unsync")
	}
}

func TestSummaryPromptListsCategoryTotals(t *testing.T) {
	e, source, _ := setupEngine(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	source.add("steps", valueSample(start.Add(9*time.Hour), 12345))

	prompt, err := e.SummaryPrompt(context.Background(), start, end)
	if err != nil {
		t.Fatalf("SummaryPrompt failed: %v", err)
	}
	if !strings.Contains(prompt, "steps") || !strings.Contains(prompt, "12,345") {
		t.Errorf("prompt missing steps total: %q", prompt)
	}
	if strings.Contains(prompt, "weight") {
		t.Errorf("prompt mentions empty category: %q", prompt)
	}
}

type cannedSummary struct{ text string }

func (c cannedSummary) Generate(ctx context.Context, prompt string) (string, error) {
	return c.text, nil
}

func TestSummarizeDelegatesToService(t *testing.T) {
	e, source, _ := setupEngine(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	source.add("steps", valueSample(start.Add(9*time.Hour), 100))

	got, err := e.Summarize(context.Background(), cannedSummary{text: "Nice month."}, start, start.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "Nice month." {
		t.Errorf("Summarize = %q", got)
	}
}
