package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/talentbase/talentbase/errors"
)

// Store handles persistence of the hiring-pipeline tables.
// Construct one explicitly and pass it down; there is no package-level
// instance.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// New creates a store over an opened, migrated database.
// If logger is nil the store operates silently.
func New(db *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying handle for lifecycle management (Close) and the
// seeder's transaction scope.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TableCounts returns row counts for every table, keyed by table name.
func (s *Store) TableCounts() (map[string]int, error) {
	counts := make(map[string]int, 5)
	for _, table := range []string{"jobs", "candidates", "assessments", "notes", "timeline_events"} {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, errors.Wrapf(err, "count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx so insert helpers can run
// inside or outside the seeder's transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// marshalJSON encodes list-valued fields for their TEXT columns.
func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshal json column")
	}
	return string(b), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal json column")
	}
	return out, nil
}

// formatTime stores timestamps as ISO-8601 text, always UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse timestamp %q", raw)
	}
	return t, nil
}
