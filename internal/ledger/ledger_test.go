// ABOUTME: Tests for the sync ledger's idempotency, failure policy, and reversal.
// ABOUTME: Covers duplicate sync, partial failures, undo, persistence, corruption.
package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

var testCats = func() []models.Category {
	r := models.DefaultRegistry()
	steps, _ := r.Get("steps")
	workouts, _ := r.Get("workouts")
	return []models.Category{steps, workouts}
}()

func testRange() (time.Time, time.Time) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 6)
}

func sampleAt(at time.Time, detail string) *models.RawSample {
	return models.NewSample(at, at.Add(30*time.Minute), detail)
}

func setupLedger(t *testing.T) (*Ledger, *memStore) {
	t.Helper()
	kvs := newMemStore()
	l, err := Load(kvs)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return l, kvs
}

func TestSyncCreatesRecordsAndAppendsEntry(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	source.add("steps", sampleAt(start.Add(9*time.Hour), "1,200 steps"))
	source.add("workouts", sampleAt(start.AddDate(0, 0, 1), "30 min run"))
	sink := newFakeSink()

	report, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if report.Created != 2 || report.Failed != 0 {
		t.Errorf("report = %d created / %d failed, want 2/0", report.Created, report.Failed)
	}
	if report.Range.RecordCount != len(report.Range.RecordIDs) {
		t.Errorf("RecordCount %d != len(RecordIDs) %d", report.Range.RecordCount, len(report.Range.RecordIDs))
	}
	if len(sink.created) != 2 {
		t.Errorf("sink created %d records, want 2", len(sink.created))
	}
	if _, ok := l.IsRangeSynced(start, end); !ok {
		t.Error("expected range to be reported synced")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	source.add("steps", sampleAt(start.Add(9*time.Hour), "800 steps"))
	sink := newFakeSink()

	first, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("first Sync failed: %v", err)
	}

	second, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if !second.AlreadySynced {
		t.Error("expected second sync to report prior entry")
	}
	if second.Range.ID != first.Range.ID {
		t.Error("expected second sync to report the first entry")
	}
	if len(sink.created) != 1 {
		t.Errorf("sink created %d records total, want exactly 1", len(sink.created))
	}
	if len(l.Entries()) != 1 {
		t.Errorf("ledger has %d entries, want 1", len(l.Entries()))
	}
}

func TestSyncExactMatchOnlyIgnoresOverlap(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	sink := newFakeSink()
	if _, err := l.Sync(context.Background(), start, end, testCats, source, sink); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	// Overlapping but not identical range is reported unsynced.
	if _, ok := l.IsRangeSynced(start.AddDate(0, 0, 1), end); ok {
		t.Error("overlapping range reported synced; exact-match lookup expected")
	}

	// Same days at different times of day match.
	if _, ok := l.IsRangeSynced(start.Add(13*time.Hour), end.Add(2*time.Hour)); !ok {
		t.Error("same calendar days should match regardless of time of day")
	}
}

func TestSyncToleratesPartialCreationFailure(t *testing.T) {
	l, kvs := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	for i := 0; i < 10; i++ {
		detail := fmt.Sprintf("sample %d", i)
		if i == 3 || i == 7 {
			detail = "fail-create"
		}
		source.add("steps", sampleAt(start.Add(time.Duration(i)*time.Hour), detail))
	}
	sink := newFakeSink()

	report, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if report.Created != 8 || report.Failed != 2 {
		t.Errorf("report = %d created / %d failed, want 8/2", report.Created, report.Failed)
	}
	if report.Range.RecordCount != 8 {
		t.Errorf("RecordCount = %d, want 8", report.Range.RecordCount)
	}

	// The entry must still have been appended and persisted.
	if _, ok := kvs.blobs[LedgerKey]; !ok {
		t.Error("expected ledger blob to be persisted")
	}
	if got := report.Summary(); got != "Created 8 calendar records (2 failed)" {
		t.Errorf("Summary = %q", got)
	}
}

func TestSyncWidensEndBoundByOneDay(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	// A sample on the end day itself must be included: provider queries are
	// end-exclusive, so the sync widens the bound by one calendar day.
	source := newFakeSource()
	source.add("steps", sampleAt(end.Add(10*time.Hour), "on end day"))
	sink := newFakeSink()

	report, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if report.Created != 1 {
		t.Errorf("Created = %d, want 1 (end day included)", report.Created)
	}
}

func TestSyncPropagatesSourceFailureWithoutCreating(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	source.err = fmt.Errorf("provider unreachable")
	sink := newFakeSink()

	if _, err := l.Sync(context.Background(), start, end, testCats, source, sink); err == nil {
		t.Fatal("expected error from source failure")
	}
	if len(sink.created) != 0 {
		t.Errorf("sink created %d records despite fetch failure, want 0", len(sink.created))
	}
	if len(l.Entries()) != 0 {
		t.Error("ledger must stay in pre-operation state on fetch failure")
	}
}

func TestSyncRollsBackOnPersistFailure(t *testing.T) {
	l, kvs := setupLedger(t)
	start, end := testRange()

	kvs.failSet = true
	source := newFakeSource()
	sink := newFakeSink()

	if _, err := l.Sync(context.Background(), start, end, testCats, source, sink); err == nil {
		t.Fatal("expected persist error")
	}
	if len(l.Entries()) != 0 {
		t.Error("in-memory ledger must roll back when persistence fails")
	}
}

func TestPreviewCreatesNothing(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	source.add("steps", sampleAt(start.Add(9*time.Hour), "1,200 steps"))

	records, err := l.Preview(context.Background(), start, end, testCats, source)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Category != "steps" || records[0].Emoji == "" {
		t.Errorf("record = %+v, want steps with emoji", records[0])
	}
	if records[0].Detail != "1,200 steps" {
		t.Errorf("Detail = %q, want \"1,200 steps\"", records[0].Detail)
	}
	if len(l.Entries()) != 0 {
		t.Error("preview must not append ledger entries")
	}
}

func TestDeleteRangeUndoesSync(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	source.add("steps", sampleAt(start.Add(9*time.Hour), "900 steps"))
	sink := newFakeSink()

	report, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	delReport, err := l.DeleteRange(context.Background(), report.Range.ID.String()[:8], sink)
	if err != nil {
		t.Fatalf("DeleteRange failed: %v", err)
	}
	if delReport.Deleted != 1 || delReport.Failed != 0 {
		t.Errorf("delete report = %d/%d, want 1 deleted, 0 failed", delReport.Deleted, delReport.Failed)
	}
	if _, ok := l.IsRangeSynced(start, end); ok {
		t.Error("range still reported synced after deletion")
	}

	// A fresh sync for the same range must proceed, not hit the stale branch.
	fresh, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("re-Sync failed: %v", err)
	}
	if fresh.AlreadySynced {
		t.Error("re-sync after deletion must be a fresh sync")
	}
	if fresh.Created != 1 {
		t.Errorf("re-sync Created = %d, want 1", fresh.Created)
	}
}

func TestDeleteRangeRemovesEntryDespitePartialFailure(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	source.add("steps", sampleAt(start.Add(8*time.Hour), "a"))
	source.add("steps", sampleAt(start.Add(9*time.Hour), "b"))
	sink := newFakeSink()

	report, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	sink.failDelete[report.Range.RecordIDs[0]] = true
	delReport, err := l.DeleteRange(context.Background(), report.Range.ID.String(), sink)
	if err != nil {
		t.Fatalf("DeleteRange failed: %v", err)
	}
	if delReport.Deleted != 1 || delReport.Failed != 1 {
		t.Errorf("delete report = %d/%d, want 1 deleted, 1 failed", delReport.Deleted, delReport.Failed)
	}
	// Accepted risk: the entry is removed even though a record was orphaned.
	if len(l.Entries()) != 0 {
		t.Error("ledger entry must be removed despite partial deletion failure")
	}
}

func TestDeleteRangeUnknownID(t *testing.T) {
	l, _ := setupLedger(t)
	if _, err := l.DeleteRange(context.Background(), "deadbeef", newFakeSink()); err == nil {
		t.Error("expected error for unknown range ID")
	}
}

func TestDeleteAllClearsLedger(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	source.add("steps", sampleAt(start.Add(9*time.Hour), "x"))
	sink := newFakeSink()

	if _, err := l.Sync(context.Background(), start, end, testCats, source, sink); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if _, err := l.Sync(context.Background(), start.AddDate(0, 0, 7), end.AddDate(0, 0, 7), testCats, source, sink); err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}

	report, err := l.DeleteAll(context.Background(), sink)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if report.Ranges != 2 {
		t.Errorf("Ranges = %d, want 2", report.Ranges)
	}
	if len(l.Entries()) != 0 {
		t.Error("expected empty ledger after DeleteAll")
	}
}

func TestLoadSurvivesRestartAndSortsNewestFirst(t *testing.T) {
	l, kvs := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	sink := newFakeSink()
	if _, err := l.Sync(context.Background(), start, end, testCats, source, sink); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if _, err := l.Sync(context.Background(), start.AddDate(0, 0, 7), end.AddDate(0, 0, 7), testCats, source, sink); err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}

	reloaded, err := Load(kvs)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	entries := reloaded.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].SyncedAt.Before(entries[1].SyncedAt) {
		t.Error("entries must be sorted newest first on load")
	}
	if _, ok := reloaded.IsRangeSynced(start, end); !ok {
		t.Error("reloaded ledger lost a synced range")
	}
}

func TestLoadCorruptBlobStartsEmpty(t *testing.T) {
	kvs := newMemStore()
	kvs.blobs[LedgerKey] = []byte("{not json")

	l, err := Load(kvs)
	if err != nil {
		t.Fatalf("Load must not fail on corrupt blob: %v", err)
	}
	if len(l.Entries()) != 0 {
		t.Error("corrupt blob must yield an empty ledger")
	}
}

func TestSyncPreservesSampleOrderWithinCategory(t *testing.T) {
	l, _ := setupLedger(t)
	start, end := testRange()

	source := newFakeSource()
	for i := 0; i < 4; i++ {
		source.add("steps", sampleAt(start.Add(time.Duration(i)*time.Hour), fmt.Sprintf("s%d", i)))
	}
	sink := newFakeSink()

	report, err := l.Sync(context.Background(), start, end, testCats, source, sink)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	for i, id := range report.Range.RecordIDs {
		want := fmt.Sprintf("rec-%d", i+1)
		if id != want {
			t.Errorf("RecordIDs[%d] = %s, want %s (creation order preserved)", i, id, want)
		}
	}
}
