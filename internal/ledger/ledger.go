// ABOUTME: SyncLedger records which date ranges were projected into calendar records.
// ABOUTME: Guarantees at-most-once creation per exact range and supports reversal.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/calendar"
	"github.com/KishParikh13/HealthToCalendar/internal/health"
	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/KishParikh13/HealthToCalendar/internal/store"
	"github.com/google/uuid"
)

// LedgerKey is the fixed blob key the serialized ledger lives under.
const LedgerKey = "sync_ledger"

// Ledger is the ordered collection of synced ranges, newest first. It is the
// only state in the engine that survives process restarts: the whole list is
// read once on load and rewritten wholesale on every mutation.
type Ledger struct {
	store store.KeyValueStore

	mu      sync.Mutex
	entries []*models.SyncedRange
}

// Load reads the persisted ledger from the store. An absent or corrupt blob
// yields an empty ledger rather than an error: the persisted state is an
// advisory record of what was synced, and losing it must not crash startup.
func Load(kvs store.KeyValueStore) (*Ledger, error) {
	l := &Ledger{store: kvs}

	data, ok, err := kvs.GetBlob(LedgerKey)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if !ok {
		return l, nil
	}

	var entries []*models.SyncedRange
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt blob: start from empty.
		return l, nil
	}

	// Guard against out-of-order persistence writes.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SyncedAt.After(entries[j].SyncedAt)
	})
	l.entries = entries
	return l, nil
}

// Entries returns the synced ranges, most recent first.
func (l *Ledger) Entries() []*models.SyncedRange {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*models.SyncedRange, len(l.entries))
	copy(out, l.entries)
	return out
}

// IsRangeSynced looks up a prior entry by exact calendar-day-normalized
// (start, end) match. A range that merely overlaps an existing entry is
// reported as unsynced.
func (l *Ledger) IsRangeSynced(start, end time.Time) (*models.SyncedRange, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.findRangeLocked(start, end)
}

func (l *Ledger) findRangeLocked(start, end time.Time) (*models.SyncedRange, bool) {
	for _, e := range l.entries {
		if models.SameDay(e.StartDate, start) && models.SameDay(e.EndDate, end) {
			return e, true
		}
	}
	return nil, false
}

// categorySamples is one category's fetched batch, in retrieval order.
type categorySamples struct {
	cat     models.Category
	samples []*models.RawSample
}

// gather pulls samples for every enabled category over [start, end+1d).
// The end bound is widened by one calendar day because source queries are
// exclusive of their end by convention.
func gather(ctx context.Context, source health.SampleSource, cats []models.Category, start, end time.Time) ([]categorySamples, error) {
	queryStart := models.DayStart(start)
	queryEnd := models.DayStart(end).AddDate(0, 0, 1)

	var batches []categorySamples
	for _, cat := range cats {
		samples, err := source.Fetch(ctx, cat, queryStart, queryEnd)
		if err != nil {
			return nil, fmt.Errorf("fetch %s samples: %w", cat.Name, err)
		}
		batches = append(batches, categorySamples{cat: cat, samples: samples})
	}
	return batches, nil
}

// Sync projects the range's samples into external records and appends a new
// ledger entry. A request for an already-exactly-synced range is a no-op that
// reports the prior entry. Per-sample creation failures are counted and do
// not abort the batch; the entry records only the identifiers that were
// actually created.
func (l *Ledger) Sync(ctx context.Context, start, end time.Time, cats []models.Category, source health.SampleSource, sink calendar.RecordSink) (*SyncReport, error) {
	if prior, ok := l.IsRangeSynced(start, end); ok {
		return &SyncReport{AlreadySynced: true, Range: prior, Created: prior.RecordCount}, nil
	}

	// Fetch everything before creating anything, so a provider failure
	// leaves no half-created batch behind.
	batches, err := gather(ctx, source, cats, start, end)
	if err != nil {
		return nil, err
	}

	var recordIDs []string
	var failed int
	for _, batch := range batches {
		for _, sample := range batch.samples {
			id, err := sink.Create(ctx, sample, batch.cat)
			if err != nil {
				failed++
				continue
			}
			recordIDs = append(recordIDs, id)
		}
	}

	entry := &models.SyncedRange{
		ID:          uuid.New(),
		StartDate:   start,
		EndDate:     end,
		SyncedAt:    time.Now(),
		RecordCount: len(recordIDs),
		RecordIDs:   recordIDs,
	}

	// Append is atomic: the entry is fully built, then the ledger is
	// persisted exactly once.
	l.mu.Lock()
	l.entries = append([]*models.SyncedRange{entry}, l.entries...)
	if err := l.persistLocked(); err != nil {
		l.entries = l.entries[1:]
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()

	return &SyncReport{Range: entry, Created: len(recordIDs), Failed: failed}, nil
}

// Preview is the read-only variant of Sync: it reports the records a sync
// would create without creating anything.
func (l *Ledger) Preview(ctx context.Context, start, end time.Time, cats []models.Category, source health.SampleSource) ([]models.PreviewRecord, error) {
	batches, err := gather(ctx, source, cats, start, end)
	if err != nil {
		return nil, err
	}

	var records []models.PreviewRecord
	for _, batch := range batches {
		for _, sample := range batch.samples {
			records = append(records, models.PreviewRecord{
				Emoji:    batch.cat.Emoji,
				Category: batch.cat.Name,
				Span:     formatSpan(sample),
				Detail:   sample.Detail,
			})
		}
	}
	return records, nil
}

// DeleteRange removes one synced range, best-effort deleting its external
// records first. The ledger entry is removed even when some deletions fail,
// which can orphan external records; the report carries the failure count.
func (l *Ledger) DeleteRange(ctx context.Context, idOrPrefix string, sink calendar.RecordSink) (*DeleteReport, error) {
	l.mu.Lock()
	idx := -1
	var matches int
	for i, e := range l.entries {
		if len(idOrPrefix) <= len(e.ID.String()) && e.ID.String()[:len(idOrPrefix)] == idOrPrefix {
			idx = i
			matches++
		}
	}
	if matches > 1 {
		l.mu.Unlock()
		return nil, fmt.Errorf("ambiguous prefix %s: matches multiple synced ranges", idOrPrefix)
	}
	if idx < 0 {
		l.mu.Unlock()
		return nil, fmt.Errorf("synced range not found: %s", idOrPrefix)
	}
	entry := l.entries[idx]
	l.mu.Unlock()

	report := &DeleteReport{Ranges: 1}
	for _, recordID := range entry.RecordIDs {
		if err := sink.Delete(ctx, recordID); err != nil {
			report.Failed++
			continue
		}
		report.Deleted++
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.ID == entry.ID {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	if err := l.persistLocked(); err != nil {
		return report, err
	}
	return report, nil
}

// DeleteAll applies the same best-effort deletion across every entry, then
// clears the ledger.
func (l *Ledger) DeleteAll(ctx context.Context, sink calendar.RecordSink) (*DeleteReport, error) {
	entries := l.Entries()

	report := &DeleteReport{Ranges: len(entries)}
	for _, entry := range entries {
		for _, recordID := range entry.RecordIDs {
			if err := sink.Delete(ctx, recordID); err != nil {
				report.Failed++
				continue
			}
			report.Deleted++
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	if err := l.persistLocked(); err != nil {
		return report, err
	}
	return report, nil
}

// persistLocked serializes the whole ledger and rewrites the blob.
func (l *Ledger) persistLocked() error {
	data, err := json.Marshal(l.entries)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := l.store.SetBlob(LedgerKey, data); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// formatSpan renders a sample's time span for preview output.
func formatSpan(s *models.RawSample) string {
	if s.AllDay {
		return s.Start.Format("Jan 2")
	}
	if models.SameDay(s.Start, s.End) {
		return fmt.Sprintf("%s – %s", s.Start.Format("Jan 2 3:04PM"), s.End.Format("3:04PM"))
	}
	return fmt.Sprintf("%s – %s", s.Start.Format("Jan 2 3:04PM"), s.End.Format("Jan 2 3:04PM"))
}
