package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"commandant/internal/models"
	"commandant/internal/stats"
)

var bands = stats.Bands{OnTrack: 0.85, AtRisk: 0.5}

func TestLeaderboard_Empty(t *testing.T) {
	assert.Equal(t, Empty, Leaderboard(TitleWeekly, nil, models.Meta{}, bands))
}

func TestLeaderboard_RankedLines(t *testing.T) {
	perfs := []stats.Perf{
		{User: "42", Complete: 2, Total: 7},
		{User: "7", Complete: 6, Total: 7},
	}
	meta := models.Meta{Names: map[string]string{"7": "alice", "42": "bob"}}

	got := Leaderboard(TitleAllTime, perfs, meta, bands)
	lines := strings.Split(got, "\n")
	assert.Equal(t, TitleAllTime, lines[0])
	assert.Equal(t, "1) alice: 6/7 complete (85.7%) 🔥", lines[1])
	assert.Equal(t, "2) bob: 2/7 complete (28.6%) ⚠️", lines[2])
}

func TestLeaderboard_LegacyKeyRendersAsIs(t *testing.T) {
	perfs := []stats.Perf{{User: "OldName", Complete: 1, Total: 2}}
	got := Leaderboard(TitleWeekly, perfs, models.Meta{}, bands)
	assert.Contains(t, got, "1) OldName: 1/2 complete (50.0%) ✅")
}

func TestNag(t *testing.T) {
	got := Nag("alice", 2)
	assert.Contains(t, got, "alice")
	assert.Contains(t, got, "more than 2 days")
}
