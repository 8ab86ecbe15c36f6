// ABOUTME: SQLite schema definition for the sample store.
// ABOUTME: One table of categorized samples with range-query indexes.
package health

// initSchema creates or updates the database schema.
func (s *SampleStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		start_at DATETIME NOT NULL,
		end_at DATETIME NOT NULL,
		all_day INTEGER NOT NULL DEFAULT 0,
		detail TEXT NOT NULL DEFAULT '',
		value REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_samples_category ON samples(category);
	CREATE INDEX IF NOT EXISTS idx_samples_start ON samples(start_at);
	CREATE INDEX IF NOT EXISTS idx_samples_category_start ON samples(category, start_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
