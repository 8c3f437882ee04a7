package sqlite

import (
	"database/sql"
	"time"
)

// Timestamps are stored as UTC RFC3339 text with a fixed nine-digit
// fractional second rather than relying on driver-specific time.Time
// marshalling, so the on-disk representation is stable across SQLite
// driver choices and text order (ORDER BY created_at) is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timeToArg(t time.Time) string { return t.UTC().Format(timeLayout) }

func nullTimeToArg(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: timeToArg(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func scanNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
