// Package dateutil provides local-calendar arithmetic for the rollup
// pipeline. All functions work on date fields (year/month/day) in the local
// timezone; none of them add raw durations, so results are stable across DST
// transitions.
package dateutil

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD layout used for all persisted dates.
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FormatDate renders t's local year-month-day as a zero-padded ISO date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as local midnight. It rejects strings
// that don't match the pattern and calendar overflow ("2024-02-31",
// "2024-13-01") by re-checking that the constructed date renders back to the
// input, so a malformed date can never silently roll over into a nearby
// valid one.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if FormatDate(t) != s {
		return time.Time{}, fmt.Errorf("invalid date %q: no such calendar day", s)
	}
	return t, nil
}

// Midnight truncates t to local midnight of the same calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays shifts t by n calendar days using date-field math.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WeekStart returns the Monday of the week containing t, at local midnight.
// Weeks start on Monday throughout the system.
func WeekStart(t time.Time) time.Time {
	d := Midnight(t)
	offset := 1 - int(d.Weekday())
	if d.Weekday() == time.Sunday {
		offset = -6
	}
	return AddDays(d, offset)
}

// WeekEnd returns the Sunday ending the week containing t.
func WeekEnd(t time.Time) time.Time {
	return AddDays(WeekStart(t), 6)
}

// MonthStart returns the first day of the calendar month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns the last day of the calendar month containing t, computed
// as day zero of the following month so 28/29/30/31-day months all come out
// right without hardcoding.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// YearBounds returns Jan 1 and Dec 31 of the given year as local dates.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.Local)
	return start, end
}
