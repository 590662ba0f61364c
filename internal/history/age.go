package history

import (
	"fmt"
	"time"
)

const (
	msPerMinute = int64(time.Minute / time.Millisecond)
	msPerHour   = int64(time.Hour / time.Millisecond)
	msPerDay    = 24 * msPerHour
)

// FormatRelativeAge renders how long before now the timestamp (milliseconds
// since the Unix epoch) was, in whole minutes, hours or days.
//
//	< 1 minute  -> "Just now"
//	< 1 hour    -> "{N}m ago"
//	< 24 hours  -> "{N}h ago"
//	otherwise   -> "{N}d ago"
//
// Timestamps in the future render as "Just now".
func FormatRelativeAge(timestamp int64, now time.Time) string {
	elapsed := now.UnixMilli() - timestamp

	switch {
	case elapsed < msPerMinute:
		return "Just now"
	case elapsed < msPerHour:
		return fmt.Sprintf("%dm ago", elapsed/msPerMinute)
	case elapsed < msPerDay:
		return fmt.Sprintf("%dh ago", elapsed/msPerHour)
	default:
		return fmt.Sprintf("%dd ago", elapsed/msPerDay)
	}
}
