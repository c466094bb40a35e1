package dateutil

import (
	"fmt"
	"time"
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// NextDay returns the start of the day after the given date
func NextDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day()+1, 0, 0, 0, 0, date.Location())
}

// StartOfMonth returns the first day of the month at 00:00
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// DaysInMonth returns the number of days in the month of the given date
func DaysInMonth(date time.Time) int {
	// Day 0 of the next month is the last day of this one
	return time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, date.Location()).Day()
}

// AddMonths moves the date by n calendar months, keeping the clock time.
// The day is pinned to the 1st so that Jan 31 + 1 never overflows into March.
func AddMonths(date time.Time, n int) time.Time {
	return time.Date(date.Year(), date.Month()+time.Month(n), 1,
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// FormatISO8601 formats a timestamp with milliseconds and a colon offset
// Example: 2024-02-05T00:00:00.000+01:00
func FormatISO8601(date time.Time) string {
	return date.Format("2006-01-02T15:04:05.000Z07:00")
}

// FormatMonth formats the month as MM.YYYY
func FormatMonth(date time.Time) string {
	return date.Format("01.2006")
}

// FormatDay formats a calendar day as DD.MM.YYYY
func FormatDay(date time.Time) string {
	return date.Format("02.01.2006")
}

// ParseMonth parses YYYY-MM or MM.YYYY into the first day of that month in loc
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	formats := []string{
		"2006-01",
		"01.2006",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM or MM.YYYY", s)
}
