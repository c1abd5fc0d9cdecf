// Package stats derives leaderboard numbers from a ledger snapshot. All
// queries are read-only and deterministic: users enter in sorted-key order
// and ranking is a stable sort, so ties keep that order.
package stats

import (
	"sort"

	"commandant/internal/dates"
	"commandant/internal/models"
)

// Perf is one user's score over a window: Complete out of Total.
type Perf struct {
	User     string
	Complete int
	Total    int
}

// Ratio is the rank value. A zero denominator ranks as 0.
func (p Perf) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Complete) / float64(p.Total)
}

// RollingN counts complete entries among each user's N most recent recorded
// days. The denominator stays N even when fewer days of history exist; the
// reports have always read that way.
func RollingN(l models.Ledger, n int) []Perf {
	out := make([]Perf, 0, len(l))
	for _, user := range sortedUsers(l) {
		days := sortedDaysDesc(l[user])
		if len(days) > n {
			days = days[:n]
		}
		complete := 0
		for _, d := range days {
			if l[user][d] == models.StatusComplete {
				complete++
			}
		}
		out = append(out, Perf{User: user, Complete: complete, Total: n})
	}
	return out
}

// WeekToDate counts complete entries from each user's most recent day back
// through the most recent Monday present in their history, inclusive. A
// history with no Monday yields the whole history as the window.
func WeekToDate(l models.Ledger) []Perf {
	out := make([]Perf, 0, len(l))
	for _, user := range sortedUsers(l) {
		days := sortedDaysDesc(l[user])
		window := days
		for i, d := range days {
			if dates.IsMonday(d) {
				window = days[:i+1]
				break
			}
		}
		complete := 0
		for _, d := range window {
			if l[user][d] == models.StatusComplete {
				complete++
			}
		}
		out = append(out, Perf{User: user, Complete: complete, Total: len(window)})
	}
	return out
}

// AllTime counts complete entries over each user's entire history.
func AllTime(l models.Ledger) []Perf {
	out := make([]Perf, 0, len(l))
	for _, user := range sortedUsers(l) {
		rec := l[user]
		complete := 0
		for _, st := range rec {
			if st == models.StatusComplete {
				complete++
			}
		}
		out = append(out, Perf{User: user, Complete: complete, Total: len(rec)})
	}
	return out
}

// Rank orders perfs by ratio descending. The sort is stable, so equal ratios
// keep their incoming relative order.
func Rank(perfs []Perf) []Perf {
	out := make([]Perf, len(perfs))
	copy(out, perfs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ratio() > out[j].Ratio()
	})
	return out
}

// Bands is one threshold pair applied to every window.
type Bands struct {
	OnTrack float64 // ratio at or above -> on track
	AtRisk  float64 // ratio below -> at risk
}

// Band classifies a ratio as "fire" (on track), "warn" (at risk) or "ok".
func (b Bands) Band(ratio float64) string {
	switch {
	case ratio >= b.OnTrack:
		return "🔥"
	case ratio < b.AtRisk:
		return "⚠️"
	default:
		return "✅"
	}
}

func sortedUsers(l models.Ledger) []string {
	users := make([]string, 0, len(l))
	for u := range l {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

func sortedDaysDesc(rec models.DayRecord) []string {
	days := make([]string, 0, len(rec))
	for d := range rec {
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days
}
