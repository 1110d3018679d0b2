package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const measurementSchema = `
CREATE TABLE IF NOT EXISTS measurement_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	concept_id    TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	definition    TEXT NOT NULL,
	context       TEXT,
	source_id     TEXT,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_measurement_concept ON measurement_log(concept_id);
`

// #endregion schema

// #region ensure
// EnsureSchema creates the measurement_log table.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(measurementSchema); err != nil {
		return fmt.Errorf("measurement schema: %w", err)
	}
	return nil
}

// #endregion ensure

// #region log-measurement
// LogMeasurement writes one collapse event to the measurement log.
func LogMeasurement(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO measurement_log (concept_id, trigger_type, definition, context, source_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ConceptID,
		string(entry.Trigger),
		entry.Definition,
		nullIfEmpty(entry.Context),
		nullIfEmpty(entry.SourceID),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log measurement: %w", err)
	}
	return nil
}

// #endregion log-measurement

// #region recent
// Recent returns the newest measurement entries, most recent first.
func Recent(db *sql.DB, limit int) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT concept_id, trigger_type, definition, context, source_id, created_at
		 FROM measurement_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent measurements: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var trigger, createdAt string
		var context, sourceID sql.NullString
		if err := rows.Scan(&e.ConceptID, &trigger, &e.Definition, &context, &sourceID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		e.Trigger = TriggerKind(trigger)
		if context.Valid {
			e.Context = context.String
		}
		if sourceID.Valid {
			e.SourceID = sourceID.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
