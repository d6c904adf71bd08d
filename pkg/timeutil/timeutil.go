// Package timeutil provides best-effort timestamp parsing for provider
// payloads. Providers disagree on timestamp formats, and individual records
// are allowed to carry malformed ones; exhausting the accepted formats yields
// "no timestamp" rather than an error so a single bad record never fails a
// whole collection.
package timeutil

import (
	"time"
)

// DateFormat is the calendar-date layout used in provider query parameters.
const DateFormat = "2006-01-02"

// timestampFormats is the ordered list of layouts tried by ParseTimestamp.
var timestampFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	"2006-01-02 15:04:05",
	DateFormat,
}

// ParseTimestamp tries each accepted layout in order and returns the first
// match in UTC. It returns nil when the value is empty or no layout matches.
func ParseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ParseDate parses a "2006-01-02" calendar date in UTC.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateFormat, value)
}

// FormatDate formats a time as a "2006-01-02" calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// FormatDateTimeUTC formats a timestamp as "2006-01-02 15:04 UTC".
func FormatDateTimeUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
