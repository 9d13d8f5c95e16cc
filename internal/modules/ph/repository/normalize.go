package repository

import (
	"fmt"
	"strings"
	"time"
)

// FromEpochMillis converts a remote event_time to a UTC instant.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ToEpochMillis is the inverse of FromEpochMillis; sub-millisecond precision is dropped.
func ToEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// SQLiteLayout is how the local store writes datetime values.
const SQLiteLayout = "2006-01-02 15:04:05"

// sqliteBoundLayout keeps milliseconds, the resolution julianday compares at.
const sqliteBoundLayout = "2006-01-02 15:04:05.000"

// Zone-less layouts are read as UTC.
var textLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	SQLiteLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads a textual datetime as stored by the local database or
// produced by other tools writing into it.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unrecognized layout", s)
}

// FormatSQLite renders t in the local store's datetime layout.
func FormatSQLite(t time.Time) string {
	return t.UTC().Format(SQLiteLayout)
}

// formatSQLiteBound renders a query bound for comparison with julianday.
func formatSQLiteBound(t time.Time) string {
	return t.UTC().Format(sqliteBoundLayout)
}
