package model

import "time"

// DayLayout is the ISO date layout used for day keys and API dates.
const DayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a civil date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO date into a civil date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// DayKey formats the calendar date of t.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// DaysBetween returns the whole days from a to b; negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// FirstOfMonth returns the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

// DayBucket pairs a calendar date with the net of the transactions on it.
type DayBucket struct {
	Date    time.Time
	Net     Milliunits
	Balance Milliunits // running balance at end of day
}
