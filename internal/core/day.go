package core

import "time"

// DayOf truncates t to midnight in its own location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRangeMillis returns the epoch-millisecond range covering the local
// day of t: start inclusive, end exclusive.
func DayRangeMillis(t time.Time) (startMs, endMs int64) {
	start := DayOf(t)
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}

// WindowMillis returns the epoch-millisecond range covering the inclusive
// calendar window [start, end]: start-of-start inclusive, start of the day
// after end exclusive.
func WindowMillis(start, end time.Time) (startMs, endMs int64) {
	return DayOf(start).UnixMilli(), DayOf(end).AddDate(0, 0, 1).UnixMilli()
}

// ISODate formats t as an ISO-8601 calendar date.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
