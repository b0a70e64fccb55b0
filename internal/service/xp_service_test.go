package service

import (
	"testing"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/repository"
	"learnsphere_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newXPFixture(t *testing.T) *XPService {
	t.Helper()
	db := newTestDB(t)
	return NewXPService(repository.NewXPRepository(db), repository.NewUserRepository(db), nil)
}

func TestGetProfileCreatesLazily(t *testing.T) {
	svc := newXPFixture(t)

	profile, err := svc.GetProfile(5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), profile.UserID)
	assert.Equal(t, 0, profile.TotalXP)
	assert.Equal(t, 1, profile.CurrentLevel)
	assert.Equal(t, 100, profile.XPToNextLevel)

	again, err := svc.GetProfile(5)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID, "second lookup reuses the row")
}

func TestAddXPIdempotentPerSourceID(t *testing.T) {
	svc := newXPFixture(t)

	first, err := svc.AddXP(5, 25, model.SourceManual, "grant-1")
	require.NoError(t, err)
	assert.Equal(t, 25, first.TotalXP)
	assert.Equal(t, 25, first.XPEarned)
	assert.False(t, first.Duplicate)

	second, err := svc.AddXP(5, 25, model.SourceManual, "grant-1")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 0, second.XPEarned)
	assert.Equal(t, 25, second.TotalXP)

	// A different correlation key awards normally.
	third, err := svc.AddXP(5, 25, model.SourceManual, "grant-2")
	require.NoError(t, err)
	assert.Equal(t, 50, third.TotalXP)
}

func TestAddXPWithoutSourceIDAlwaysAwards(t *testing.T) {
	svc := newXPFixture(t)

	for range 3 {
		_, err := svc.AddXP(5, 10, model.SourceManual, "")
		require.NoError(t, err)
	}

	profile, err := svc.GetProfile(5)
	require.NoError(t, err)
	assert.Equal(t, 30, profile.TotalXP)
}

func TestAddXPLevelUp(t *testing.T) {
	svc := newXPFixture(t)

	outcome, err := svc.AddXP(5, 120, model.SourceManual, "")
	require.NoError(t, err)
	assert.True(t, outcome.LeveledUp)
	assert.Equal(t, 2, outcome.NewLevel)
	assert.Equal(t, 2, outcome.CurrentLevel)
	assert.Equal(t, 130, outcome.XPToNextLevel)
}

func TestAddAchievementOncePerName(t *testing.T) {
	svc := newXPFixture(t)

	profile, earned, err := svc.AddAchievement(5, "First Steps", "Completed a lesson", 30)
	require.NoError(t, err)
	assert.True(t, earned)
	assert.Equal(t, 30, profile.TotalXP)

	profile, earned, err = svc.AddAchievement(5, "First Steps", "again", 30)
	require.NoError(t, err)
	assert.False(t, earned)
	assert.Equal(t, 30, profile.TotalXP)
}

func TestUpdateStreakEndpoint(t *testing.T) {
	svc := newXPFixture(t)

	outcome, err := svc.UpdateStreak(5)
	require.NoError(t, err)
	assert.True(t, outcome.Continued)
	assert.Equal(t, 1, outcome.CurrentStreak)
	assert.Equal(t, 0, outcome.BonusXP, "a day-one streak earns no bonus")

	// Same day again is a no-op.
	outcome, err = svc.UpdateStreak(5)
	require.NoError(t, err)
	assert.False(t, outcome.Continued)
	assert.Equal(t, 1, outcome.CurrentStreak)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	svc := newXPFixture(t)

	first, err := svc.CompleteLesson(5, "lesson-uuid-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, first.XPEarned, "reward defaults to 10")
	assert.Equal(t, 1, first.Streak)
	assert.False(t, first.Duplicate)

	second, err := svc.CompleteLesson(5, "lesson-uuid-1", 0)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 0, second.XPEarned)
	assert.Equal(t, 10, second.TotalXP)

	third, err := svc.CompleteLesson(5, "lesson-uuid-2", 25)
	require.NoError(t, err)
	assert.Equal(t, 25, third.XPEarned)
	assert.Equal(t, 35, third.TotalXP)
}

func TestRank(t *testing.T) {
	svc := newXPFixture(t)

	_, err := svc.AddXP(1, 100, model.SourceManual, "")
	require.NoError(t, err)
	_, err = svc.AddXP(2, 300, model.SourceManual, "")
	require.NoError(t, err)
	_, err = svc.AddXP(3, 200, model.SourceManual, "")
	require.NoError(t, err)

	rank, err := svc.Rank(2)
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	rank, err = svc.Rank(3)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	rank, err = svc.Rank(1)
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	_, err = svc.Rank(99)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
