package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		name         string
		totalXP      int
		wantLevel    int
		wantXPToNext int
	}{
		{"zero", 0, 1, 100},
		{"negative clamps to zero", -5, 1, 100},
		{"just below level 2", 99, 1, 1},
		{"exactly level 2", 100, 2, 150},
		{"mid level 2", 180, 2, 70},
		{"exactly level 3", 250, 3, 225},
		{"exactly level 4", 475, 4, 337},
		{"exactly level 5", 812, 5, 506},
		{"exactly level 6", 1318, 6, 759},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, xpToNext := LevelForXP(tt.totalXP)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantXPToNext, xpToNext)
		})
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prevLevel := 0
	for xp := 0; xp <= 20000; xp += 7 {
		level, xpToNext := LevelForXP(xp)
		require.GreaterOrEqual(t, level, prevLevel, "level must never decrease at xp=%d", xp)
		require.Greater(t, xpToNext, 0, "xpToNext must stay positive at xp=%d", xp)
		prevLevel = level
	}
}

func TestAddXP(t *testing.T) {
	p := &XPProfile{CurrentLevel: 1, XPToNextLevel: 100}

	res := p.AddXP(50, SourceManual, "")
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 50, p.TotalXP)
	assert.Equal(t, 50, p.XPToNextLevel)

	res = p.AddXP(75, SourceManual, "")
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 125, p.TotalXP)
	assert.Equal(t, 2, p.CurrentLevel)

	require.Len(t, p.Events, 2)
	assert.Nil(t, p.Events[0].SourceID)
}

func TestAddXPNonPositiveIsNoOp(t *testing.T) {
	p := &XPProfile{TotalXP: 40, CurrentLevel: 1, XPToNextLevel: 60}

	for _, amount := range []int{0, -10} {
		res := p.AddXP(amount, SourceManual, "")
		assert.False(t, res.LeveledUp)
		assert.Equal(t, 0, res.Awarded)
		assert.Equal(t, 40, p.TotalXP)
		assert.Empty(t, p.Events)
	}
}

func TestAddXPRecordsSourceID(t *testing.T) {
	p := &XPProfile{CurrentLevel: 1, XPToNextLevel: 100}

	p.AddXP(10, SourceLessonCompletion, "lesson-123")
	require.Len(t, p.Events, 1)
	require.NotNil(t, p.Events[0].SourceID)
	assert.Equal(t, "lesson-123", *p.Events[0].SourceID)
	assert.Equal(t, SourceLessonCompletion, p.Events[0].Source)
}

func TestUpdateStreak(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2026, 3, 1+n, 15, 30, 0, 0, time.UTC)
	}

	p := &XPProfile{}

	// First ever activity starts the streak.
	assert.True(t, p.UpdateStreak(day(0)))
	assert.Equal(t, 1, p.StreakCurrent)
	assert.Equal(t, 1, p.StreakLongest)

	// Same calendar day is a no-op.
	assert.False(t, p.UpdateStreak(day(0).Add(3*time.Hour)))
	assert.Equal(t, 1, p.StreakCurrent)

	// Next day extends.
	assert.True(t, p.UpdateStreak(day(1)))
	assert.True(t, p.UpdateStreak(day(2)))
	assert.Equal(t, 3, p.StreakCurrent)
	assert.Equal(t, 3, p.StreakLongest)

	// A gap restarts at 1 but keeps the longest streak.
	assert.True(t, p.UpdateStreak(day(5)))
	assert.Equal(t, 1, p.StreakCurrent)
	assert.Equal(t, 3, p.StreakLongest)
}

func TestAddAchievement(t *testing.T) {
	p := &XPProfile{CurrentLevel: 1, XPToNextLevel: 100}

	require.True(t, p.AddAchievement("First Course", "Generated a first course", 25))
	assert.Equal(t, 25, p.TotalXP)
	require.Len(t, p.Achievements, 1)

	// Same name is rejected and awards nothing.
	require.False(t, p.AddAchievement("First Course", "duplicate", 25))
	assert.Equal(t, 25, p.TotalXP)
	assert.Len(t, p.Achievements, 1)

	// Zero-reward achievements are recorded without touching XP.
	require.True(t, p.AddAchievement("Curious", "", 0))
	assert.Equal(t, 25, p.TotalXP)
	assert.Len(t, p.Achievements, 2)
}
