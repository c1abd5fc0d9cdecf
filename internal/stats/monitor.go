package stats

import (
	"time"

	"commandant/internal/dates"
	"commandant/internal/models"
)

// WeeklyMissCount counts incomplete days between the most recent Monday and
// now, both inclusive. now must already be in the reference timezone.
func WeeklyMissCount(rec models.DayRecord, now time.Time) int {
	misses := 0
	for i := 0; i <= dates.SinceMonday(now); i++ {
		day := dates.Day(now.AddDate(0, 0, -i))
		if rec[day] == models.StatusIncomplete {
			misses++
		}
	}
	return misses
}

// ExceedsThreshold reports whether the user's week-to-date misses are
// strictly greater than maxMisses.
func ExceedsThreshold(rec models.DayRecord, now time.Time, maxMisses int) bool {
	return WeeklyMissCount(rec, now) > maxMisses
}
