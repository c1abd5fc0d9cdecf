// Package dates centralizes day arithmetic in the reference timezone.
// All ledger keys are plain YYYY-MM-DD strings; every boundary decision
// (what "today" means, where the week starts) lives here.
package dates

import (
	"fmt"
	"time"
)

// DayFormat is the layout of every day key in the ledger.
const DayFormat = "2006-01-02"

// Day renders t's calendar date in t's own location.
func Day(t time.Time) string { return t.Format(DayFormat) }

// Effective returns the day a goal report at time now counts toward.
// Before cutoverHour (04:00 by default) the report still belongs to the
// previous day: finishing goals at 1 a.m. counts for yesterday.
func Effective(now time.Time, cutoverHour int) string {
	if now.Hour() < cutoverHour {
		return Day(now.AddDate(0, 0, -1))
	}
	return Day(now)
}

// Parse strictly parses a YYYY-MM-DD day key.
func Parse(day string) (time.Time, error) {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day %q: %w", day, err)
	}
	return t, nil
}

// IsMonday reports whether the day key falls on a Monday.
func IsMonday(day string) bool {
	t, err := Parse(day)
	return err == nil && t.Weekday() == time.Monday
}

// SinceMonday returns how many days have passed since the most recent Monday
// on or before t (0 on a Monday, 6 on a Sunday).
func SinceMonday(t time.Time) int {
	// time.Weekday starts the week on Sunday.
	return (int(t.Weekday()) + 6) % 7
}
