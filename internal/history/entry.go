// Package history keeps the list of recent search queries.
//
// The list is ordered most recent first, holds at most MaxEntries entries,
// and never holds two queries that differ only in case. It is persisted as a
// whole to a key-value store after every change.
package history

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// MaxEntries is the capacity of the search history.
const MaxEntries = 10

// Entry is a single past search.
type Entry struct {
	// ID is an opaque identifier assigned when the entry is recorded.
	ID string `json:"id" yaml:"id"`

	// Query is the search text, trimmed of surrounding whitespace.
	Query string `json:"query" yaml:"query"`

	// Timestamp is the time of the search in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`
}

// Time returns the entry timestamp as a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Age returns the coarse relative age of the entry at now.
func (e Entry) Age(now time.Time) string {
	return FormatRelativeAge(e.Timestamp, now)
}

// Normalize returns the form two queries are compared in for duplicates.
func Normalize(query string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(query))
}

// SameQuery reports whether a and b are the same search, ignoring case and
// surrounding whitespace.
func SameQuery(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
