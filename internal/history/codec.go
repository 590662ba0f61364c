package history

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	rferrors "github.com/chazuruo/reelflix/internal/errors"
)

// wireEntry mirrors Entry with pointer fields so missing keys are detectable.
type wireEntry struct {
	ID        *string `json:"id"`
	Query     *string `json:"query"`
	Timestamp *int64  `json:"timestamp"`
}

// Encode serializes entries as a JSON array of {id, query, timestamp} objects.
func Encode(entries []Entry) (string, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}
	return string(data), nil
}

// Decode parses the output of Encode. Any value that is not an array of
// complete entries yields an error wrapping ErrCorrupt.
//
// Decode does not reorder; use Normalized for the loaded form.
func Decode(data string) ([]Entry, error) {
	var wire []wireEntry
	if err := json.Unmarshal([]byte(data), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", rferrors.ErrCorrupt, err)
	}
	if wire == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", rferrors.ErrCorrupt)
	}

	entries := make([]Entry, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.ID == nil || *w.ID == "":
			return nil, fmt.Errorf("%w: entry %d has no id", rferrors.ErrCorrupt, i)
		case w.Query == nil || strings.TrimSpace(*w.Query) == "":
			return nil, fmt.Errorf("%w: entry %d has no query", rferrors.ErrCorrupt, i)
		case w.Timestamp == nil:
			return nil, fmt.Errorf("%w: entry %d has no timestamp", rferrors.ErrCorrupt, i)
		}
		entries = append(entries, Entry{
			ID:        *w.ID,
			Query:     *w.Query,
			Timestamp: *w.Timestamp,
		})
	}
	return entries, nil
}

// Normalized returns entries sorted by timestamp descending, with later
// case-insensitive duplicates dropped, truncated to MaxEntries. Entries with
// equal timestamps keep their relative order.
func Normalized(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})

	result := make([]Entry, 0, min(len(sorted), MaxEntries))
	seen := make(map[string]bool, len(sorted))
	for _, e := range sorted {
		key := Normalize(e.Query)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, e)
		if len(result) == MaxEntries {
			break
		}
	}
	return result
}
