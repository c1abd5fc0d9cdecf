package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commandant/internal/models"
)

func TestRollingN_NoHistory(t *testing.T) {
	l := models.Ledger{"alice": {}}
	got := RollingN(l, 7)
	require.Len(t, got, 1)
	assert.Equal(t, Perf{User: "alice", Complete: 0, Total: 7}, got[0])
}

func TestRollingN_TakesMostRecent(t *testing.T) {
	l := models.Ledger{
		"alice": {
			"2024-06-01": models.StatusComplete,
			"2024-06-02": models.StatusComplete,
			"2024-06-03": models.StatusIncomplete,
			"2024-06-04": models.StatusComplete,
		},
	}
	got := RollingN(l, 2)
	require.Len(t, got, 1)
	// Window is the two newest days: 06-04 complete, 06-03 incomplete.
	assert.Equal(t, 1, got[0].Complete)
	assert.Equal(t, 2, got[0].Total)
}

func TestRollingN_DenominatorStaysN(t *testing.T) {
	l := models.Ledger{"alice": {"2024-06-04": models.StatusComplete}}
	got := RollingN(l, 30)
	assert.Equal(t, Perf{User: "alice", Complete: 1, Total: 30}, got[0])
}

func TestWeekToDate_WindowThroughMonday(t *testing.T) {
	// Wednesday reference: Mon complete, Tue incomplete, Wed pending.
	l := models.Ledger{
		"alice": {
			"2024-06-10": models.StatusComplete,   // Monday
			"2024-06-11": models.StatusIncomplete, // Tuesday
			"2024-06-12": models.StatusPending,    // Wednesday
		},
	}
	got := WeekToDate(l)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Complete)
	assert.Equal(t, 3, got[0].Total)
}

func TestWeekToDate_ExcludesBeforeMonday(t *testing.T) {
	l := models.Ledger{
		"alice": {
			"2024-06-09": models.StatusComplete, // Sunday, previous week
			"2024-06-10": models.StatusComplete, // Monday
			"2024-06-11": models.StatusComplete,
		},
	}
	got := WeekToDate(l)
	assert.Equal(t, 2, got[0].Complete)
	assert.Equal(t, 2, got[0].Total)
}

func TestWeekToDate_NoMondayUsesAllHistory(t *testing.T) {
	l := models.Ledger{
		"alice": {
			"2024-06-11": models.StatusComplete,
			"2024-06-12": models.StatusIncomplete,
		},
	}
	got := WeekToDate(l)
	assert.Equal(t, 1, got[0].Complete)
	assert.Equal(t, 2, got[0].Total)
}

func TestAllTime(t *testing.T) {
	l := models.Ledger{
		"alice": {
			"2024-06-10": models.StatusComplete,
			"2024-06-11": models.StatusIncomplete,
			"2024-06-12": models.StatusPending,
		},
		"bob": {},
	}
	got := AllTime(l)
	require.Len(t, got, 2)
	assert.Equal(t, Perf{User: "alice", Complete: 1, Total: 3}, got[0])
	assert.Equal(t, Perf{User: "bob", Complete: 0, Total: 0}, got[1])
}

func TestRank_RatioDescending(t *testing.T) {
	ranked := Rank([]Perf{
		{User: "low", Complete: 1, Total: 4},
		{User: "high", Complete: 3, Total: 4},
	})
	assert.Equal(t, "high", ranked[0].User)
	assert.Equal(t, "low", ranked[1].User)
}

func TestRank_StableTies(t *testing.T) {
	// A=(2,4) and B=(1,2) both ratio 0.5: insertion order is kept.
	ranked := Rank([]Perf{
		{User: "a", Complete: 2, Total: 4},
		{User: "b", Complete: 1, Total: 2},
	})
	assert.Equal(t, "a", ranked[0].User)
	assert.Equal(t, "b", ranked[1].User)
}

func TestRank_ZeroDenominatorRanksLast(t *testing.T) {
	ranked := Rank([]Perf{
		{User: "empty", Complete: 0, Total: 0},
		{User: "busy", Complete: 1, Total: 7},
	})
	assert.Equal(t, "busy", ranked[0].User)
	assert.Equal(t, float64(0), ranked[1].Ratio())
}

func TestBands(t *testing.T) {
	b := Bands{OnTrack: 0.85, AtRisk: 0.5}
	tests := []struct {
		name  string
		ratio float64
		want  string
	}{
		{"on track", 0.85, "🔥"},
		{"above", 0.99, "🔥"},
		{"neutral", 0.6, "✅"},
		{"at risk", 0.49, "⚠️"},
		{"zero", 0, "⚠️"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Band(tt.ratio))
		})
	}
}

func TestDeterministicUserOrder(t *testing.T) {
	l := models.Ledger{"zed": {}, "amy": {}, "mia": {}}
	got := AllTime(l)
	assert.Equal(t, []string{"amy", "mia", "zed"}, []string{got[0].User, got[1].User, got[2].User})
}
