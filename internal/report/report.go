// Package report renders user-facing leaderboards and nag messages. Both the
// command handlers and the scheduled jobs send these, so the wording lives in
// one place.
package report

import (
	"fmt"
	"strings"

	"commandant/internal/models"
	"commandant/internal/stats"
)

// Empty is the reply when a leaderboard has nothing to show.
const Empty = "No data available yet!"

// Leaderboard renders a ranked table under title. Perfs are ranked here, so
// callers pass them in deterministic (user-sorted) order and ties keep it.
func Leaderboard(title string, perfs []stats.Perf, meta models.Meta, bands stats.Bands) string {
	if len(perfs) == 0 {
		return Empty
	}
	ranked := stats.Rank(perfs)
	var b strings.Builder
	b.WriteString(title)
	for i, p := range ranked {
		ratio := p.Ratio()
		fmt.Fprintf(&b, "\n%d) %s: %d/%d complete (%.1f%%) %s",
			i+1, meta.DisplayName(p.User), p.Complete, p.Total, ratio*100, bands.Band(ratio))
	}
	return b.String()
}

// Nag is the behind-on-goals callout for one user.
func Nag(name string, maxMisses int) string {
	return fmt.Sprintf("⚠️ %s, you have missed your goals for more than %d days this week, king. Let's get back on track!",
		name, maxMisses)
}

// Titles for the leaderboard variants.
const (
	TitleWeekly        = "📊 Weekly performance:"
	TitleMonthly       = "📊 Monthly performance:"
	TitleAllTime       = "📊 All-time performance:"
	TitleWeeklyAllTime = "📊 Weekly All-Time Report:"
)
