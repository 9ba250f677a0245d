package policy

import "time"

// WithinWindow reports whether a time of day (minutes since midnight) falls
// inside the window [start, end]. When start <= end the window is inclusive
// and does not wrap. When start > end the window crosses midnight and covers
// [start, 24:00) plus [00:00, end].
func WithinWindow(now, start, end int) bool {
	if start <= end {
		return now >= start && now <= end
	}
	return now >= start || now <= end
}

// MinuteOfDay converts a wall-clock time to minutes since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
