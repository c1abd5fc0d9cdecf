package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffective_AfterCutover(t *testing.T) {
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-12", Effective(now, 4))
}

func TestEffective_BeforeCutover(t *testing.T) {
	// 1 a.m. still counts for the previous day.
	now := time.Date(2024, 6, 12, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-11", Effective(now, 4))
}

func TestEffective_ExactCutover(t *testing.T) {
	now := time.Date(2024, 6, 12, 4, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-12", Effective(now, 4))
}

func TestParse(t *testing.T) {
	got, err := Parse("2024-02-29") // leap year
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", Day(got))

	_, err = Parse("not-a-day")
	assert.Error(t, err)
	_, err = Parse("12/06/2024")
	assert.Error(t, err)
}

func TestIsMonday(t *testing.T) {
	assert.True(t, IsMonday("2024-06-10"))
	assert.False(t, IsMonday("2024-06-12"))
	assert.False(t, IsMonday("garbage"))
}

func TestSinceMonday(t *testing.T) {
	tests := []struct {
		day  string
		want int
	}{
		{"2024-06-10", 0}, // Monday
		{"2024-06-12", 2}, // Wednesday
		{"2024-06-16", 6}, // Sunday
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			d, err := Parse(tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.want, SinceMonday(d))
		})
	}
}
