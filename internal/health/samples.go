// ABOUTME: Sample CRUD and range-fetch operations for the SQLite store.
// ABOUTME: Implements the SampleSource contract plus JSON export/import.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/google/uuid"
)

// AddSample stores a new sample under the given category.
func (s *SampleStore) AddSample(category string, sample *models.RawSample) error {
	if sample.End.Before(sample.Start) {
		return fmt.Errorf("add sample: end %s before start %s", sample.End, sample.Start)
	}
	query := `
		INSERT INTO samples (id, category, start_at, end_at, all_day, detail, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		sample.ID.String(),
		category,
		sample.Start.Format(time.RFC3339),
		sample.End.Format(time.RFC3339),
		boolToInt(sample.AllDay),
		sample.Detail,
		sample.Value,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("add sample: %w", err)
	}
	return nil
}

// GetSample retrieves a sample by ID or ID prefix.
func (s *SampleStore) GetSample(idOrPrefix string) (*models.RawSample, string, error) {
	id, err := s.resolveSampleID(idOrPrefix)
	if err != nil {
		return nil, "", err
	}

	row := s.db.QueryRow(`
		SELECT id, category, start_at, end_at, all_day, detail, value
		FROM samples WHERE id = ?
	`, id)
	return scanSample(row)
}

// ListSamples retrieves samples with optional category filtering,
// most recent first.
func (s *SampleStore) ListSamples(category string, limit int) ([]*models.RawSample, []string, error) {
	query := `
		SELECT id, category, start_at, end_at, all_day, detail, value
		FROM samples
	`
	var args []interface{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY start_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// DeleteSample removes a sample by ID or prefix.
func (s *SampleStore) DeleteSample(idOrPrefix string) error {
	id, err := s.resolveSampleID(idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete sample: %w", err)
	}

	result, err := s.db.Exec("DELETE FROM samples WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete sample: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sample: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("not found: %s", idOrPrefix)
	}
	return nil
}

// Fetch returns the category's samples in [start, end), in start order.
// Implements SampleSource.
func (s *SampleStore) Fetch(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, start_at, end_at, all_day, detail, value
		FROM samples
		WHERE category = ? AND start_at >= ? AND start_at < ?
		ORDER BY start_at ASC
	`, cat.Name, start.Format(time.RFC3339), end.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("fetch samples: %w", err)
	}
	defer rows.Close()

	samples, _, err := scanSamples(rows)
	return samples, err
}

// FetchAggregatedDaily returns one all-day sample per calendar day with a
// nonzero value sum. Implements SampleSource.
func (s *SampleStore) FetchAggregatedDaily(ctx context.Context, cat models.Category, start, end time.Time) ([]*models.RawSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(start_at), SUM(value)
		FROM samples
		WHERE category = ? AND start_at >= ? AND start_at < ? AND value IS NOT NULL
		GROUP BY date(start_at)
		HAVING SUM(value) > 0
		ORDER BY date(start_at) ASC
	`, cat.Name, start.Format(time.RFC3339), end.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("fetch aggregated daily: %w", err)
	}
	defer rows.Close()

	var samples []*models.RawSample
	for rows.Next() {
		var day string
		var sum float64
		if err := rows.Scan(&day, &sum); err != nil {
			return nil, fmt.Errorf("scan daily aggregate: %w", err)
		}
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		detail := dailyDetail(cat, sum)
		sample := models.NewSample(d, d.AddDate(0, 0, 1), detail).WithValue(sum).WithAllDay()
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// dailyDetail renders the daily-aggregate detail string.
func dailyDetail(cat models.Category, sum float64) string {
	return fmt.Sprintf("%g %s", sum, cat.Unit)
}

// exportedSample pairs a sample with its category for export files.
type exportedSample struct {
	Category string            `json:"category"`
	Sample   *models.RawSample `json:"sample"`
}

// ExportData is the portable representation of a sample store.
type ExportData struct {
	ExportedAt time.Time        `json:"exported_at"`
	Samples    []exportedSample `json:"samples"`
}

// ExportJSON writes every sample to w as a single JSON document.
func (s *SampleStore) ExportJSON(w io.Writer) error {
	samples, categories, err := s.ListSamples("", 0)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	data := ExportData{ExportedAt: time.Now()}
	for i, sample := range samples {
		data.Samples = append(data.Samples, exportedSample{Category: categories[i], Sample: sample})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	return nil
}

// ImportJSON reads an export document from r and inserts its samples.
// Samples whose IDs already exist are skipped; the count of imported
// samples is returned.
func (s *SampleStore) ImportJSON(r io.Reader) (int, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, fmt.Errorf("import: decode: %w", err)
	}

	imported := 0
	for _, es := range data.Samples {
		if es.Sample == nil {
			continue
		}
		if err := s.AddSample(es.Category, es.Sample); err != nil {
			// Duplicate IDs are expected on re-import; anything else is real.
			var exists int
			lookErr := s.db.QueryRow("SELECT 1 FROM samples WHERE id = ?", es.Sample.ID.String()).Scan(&exists)
			if lookErr == nil {
				continue
			}
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// resolveSampleID resolves a full ID or unique prefix to a full ID.
func (s *SampleStore) resolveSampleID(idOrPrefix string) (string, error) {
	rows, err := s.db.Query("SELECT id FROM samples WHERE id LIKE ? LIMIT 2", idOrPrefix+"%")
	if err != nil {
		return "", fmt.Errorf("resolve id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("resolve id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve id: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("not found: %s", idOrPrefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple samples", idOrPrefix)
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSampleRow(scanner rowScanner) (*models.RawSample, string, error) {
	var (
		idStr, category, startStr, endStr, detail string
		allDay                                    int
		value                                     sql.NullFloat64
	)
	if err := scanner.Scan(&idStr, &category, &startStr, &endStr, &allDay, &detail, &value); err != nil {
		return nil, "", err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, "", fmt.Errorf("parse sample id: %w", err)
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, "", fmt.Errorf("parse start_at: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return nil, "", fmt.Errorf("parse end_at: %w", err)
	}

	sample := &models.RawSample{
		ID:     id,
		Start:  start,
		End:    end,
		AllDay: allDay != 0,
		Detail: detail,
	}
	if value.Valid {
		v := value.Float64
		sample.Value = &v
	}
	return sample, category, nil
}

func scanSample(row *sql.Row) (*models.RawSample, string, error) {
	sample, category, err := scanSampleRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("sample not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("scan sample: %w", err)
	}
	return sample, category, nil
}

func scanSamples(rows *sql.Rows) ([]*models.RawSample, []string, error) {
	var samples []*models.RawSample
	var categories []string
	for rows.Next() {
		sample, category, err := scanSampleRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sample)
		categories = append(categories, category)
	}
	return samples, categories, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
