// ABOUTME: Shared test fakes for ledger tests.
// ABOUTME: In-memory KeyValueStore, scripted SampleSource, and recording RecordSink.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
)

// memStore is an in-memory KeyValueStore.
type memStore struct {
	blobs   map[string][]byte
	failSet bool
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) GetBlob(key string) ([]byte, bool, error) {
	data, ok := m.blobs[key]
	return data, ok, nil
}

func (m *memStore) SetBlob(key string, data []byte) error {
	if m.failSet {
		return fmt.Errorf("store unavailable")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = cp
	return nil
}

func (m *memStore) Close() error { return nil }

// fakeSource serves canned samples per category, filtered to [start, end).
type fakeSource struct {
	samples map[string][]*models.RawSample
	err     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{samples: make(map[string][]*models.RawSample)}
}

func (f *fakeSource) add(category string, s *models.RawSample) {
	f.samples[category] = append(f.samples[category], s)
}

func (f *fakeSource) Fetch(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.RawSample
	for _, s := range f.samples[cat.Name] {
		if !s.Start.Before(start) && s.Start.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) FetchAggregatedDaily(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error) {
	return f.Fetch(ctx, cat, start, end)
}

// fakeSink records creations and deletions. Samples whose Detail is
// "fail-create" fail creation; IDs present in failDelete fail deletion.
type fakeSink struct {
	nextID     int
	created    []string
	deleted    []string
	failDelete map[string]bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{failDelete: make(map[string]bool)}
}

func (f *fakeSink) Create(ctx context.Context, sample *models.RawSample, cat models.Category) (string, error) {
	if sample.Detail == "fail-create" {
		return "", fmt.Errorf("provider rejected record")
	}
	f.nextID++
	id := fmt.Sprintf("rec-%d", f.nextID)
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeSink) Delete(ctx context.Context, recordID string) error {
	if f.failDelete[recordID] {
		return fmt.Errorf("provider rejected deletion")
	}
	f.deleted = append(f.deleted, recordID)
	return nil
}
