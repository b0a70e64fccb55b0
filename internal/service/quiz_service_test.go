package service

import (
	"testing"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/repository"
	"learnsphere_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizOwner uint = 7

func newQuizFixture(t *testing.T) (*QuizService, *repository.CourseRepository, string) {
	t.Helper()
	db := newTestDB(t)

	courseRepo := repository.NewCourseRepository(db)
	xpRepo := repository.NewXPRepository(db)
	svc := NewQuizService(db, courseRepo, xpRepo, nil)

	course := &model.Course{
		OwnerID: quizOwner,
		Topic:   "go",
		Title:   "Go Basics",
		Level:   model.Beginner,
		Chapters: []model.Chapter{
			{
				Position: 0,
				Title:    "Syntax",
				Unlocked: true,
				Lessons: []model.Lesson{
					{Position: 0, Title: "Variables", XP: 10},
				},
			},
			{
				Position: 1,
				Title:    "Types",
				Lessons: []model.Lesson{
					{Position: 0, Title: "Structs", XP: 10},
				},
			},
		},
	}
	require.NoError(t, courseRepo.Create(course))
	return svc, courseRepo, course.ID
}

func TestSubmitFailRecordsAttempt(t *testing.T) {
	svc, repo, courseID := newQuizFixture(t)

	outcome, err := svc.Submit(quizOwner, courseID, 0, 0, 1, 5, 0)
	require.NoError(t, err)

	assert.False(t, outcome.Passed)
	assert.Equal(t, 20, outcome.Percentage)
	assert.Equal(t, 50, outcome.RequiredPercentage)
	assert.Equal(t, 0, outcome.XPEarned)
	assert.Equal(t, 1, outcome.Attempts)
	assert.False(t, outcome.ChapterCompleted)

	course, err := repo.FindByIDAndOwner(courseID, quizOwner)
	require.NoError(t, err)
	lesson := course.Lesson(0, 0)
	require.NotNil(t, lesson)
	assert.Equal(t, 1, lesson.Attempts)
	assert.Equal(t, 20, lesson.QuizScore)
	assert.False(t, lesson.QuizPassed)
	assert.False(t, lesson.Completed)
	assert.False(t, course.IsChapterUnlocked(1))
}

func TestSubmitPerfectScoreCompletesChapter(t *testing.T) {
	svc, repo, courseID := newQuizFixture(t)

	outcome, err := svc.Submit(quizOwner, courseID, 0, 0, 5, 5, 0)
	require.NoError(t, err)

	assert.True(t, outcome.Passed)
	assert.Equal(t, 100, outcome.Percentage)
	assert.True(t, outcome.ChapterCompleted)
	assert.True(t, outcome.IsLastLessonInChapter)
	// 15 base + 10 perfect score + 25 chapter completion.
	assert.Equal(t, 50, outcome.XPEarned)
	assert.Equal(t, 50, outcome.TotalXP)

	course, err := repo.FindByIDAndOwner(courseID, quizOwner)
	require.NoError(t, err)
	assert.True(t, course.Lesson(0, 0).Completed)
	assert.True(t, course.IsChapterUnlocked(1))
	assert.True(t, course.Chapters[1].Unlocked, "mirror flag must be persisted")
}

func TestSubmitGoodScoreBonus(t *testing.T) {
	svc, _, courseID := newQuizFixture(t)

	outcome, err := svc.Submit(quizOwner, courseID, 0, 0, 9, 10, 0)
	require.NoError(t, err)

	assert.True(t, outcome.Passed)
	assert.Equal(t, 90, outcome.Percentage)
	// 15 base + 5 for 90% + 25 chapter completion.
	assert.Equal(t, 45, outcome.XPEarned)
}

func TestSubmitResubmissionAwardsNothing(t *testing.T) {
	svc, _, courseID := newQuizFixture(t)

	first, err := svc.Submit(quizOwner, courseID, 0, 0, 5, 5, 0)
	require.NoError(t, err)
	require.Equal(t, 50, first.TotalXP)

	second, err := svc.Submit(quizOwner, courseID, 0, 0, 5, 5, 0)
	require.NoError(t, err)

	assert.True(t, second.Passed)
	assert.Equal(t, 0, second.XPEarned, "retried pass must not double-award")
	assert.Equal(t, 50, second.TotalXP)
	assert.Equal(t, 2, second.Attempts, "attempts still count every submission")
}

func TestSubmitCustomReward(t *testing.T) {
	svc, _, courseID := newQuizFixture(t)

	// Pass without bonuses: 3/5 = 60%, custom base reward of 30, but the
	// chapter completes because it holds a single lesson.
	outcome, err := svc.Submit(quizOwner, courseID, 0, 0, 3, 5, 30)
	require.NoError(t, err)
	assert.Equal(t, 60, outcome.Percentage)
	assert.Equal(t, 55, outcome.XPEarned)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, courseID := newQuizFixture(t)

	_, err := svc.Submit(quizOwner, courseID, 0, 0, 0, 0, 0)
	assert.Error(t, err)

	_, err = svc.Submit(quizOwner, "nonexistent", 0, 0, 3, 5, 0)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = svc.Submit(99, courseID, 0, 0, 3, 5, 0)
	assert.ErrorIs(t, err, util.ErrCourseNotFound, "other users' courses are invisible")

	_, err = svc.Submit(quizOwner, courseID, 5, 0, 3, 5, 0)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestRegenerateRequiresExistingQuiz(t *testing.T) {
	svc, _, courseID := newQuizFixture(t)

	_, err := svc.Regenerate(t.Context(), quizOwner, courseID, 0, 0)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestRegenerateReplacesQuestionsKeepsTitle(t *testing.T) {
	db := newTestDB(t)
	courseRepo := repository.NewCourseRepository(db)
	xpRepo := repository.NewXPRepository(db)

	gen := &fakeGenerator{jsonResponse: `{
		"questions": [
			{"question": "What declares a variable?", "options": ["var", "def", "let", "dim"], "correctAnswer": "var"}
		]
	}`}
	svc := NewQuizService(db, courseRepo, xpRepo, gen)

	course := &model.Course{
		OwnerID: quizOwner,
		Title:   "Go Basics",
		Chapters: []model.Chapter{{
			Position: 0,
			Title:    "Syntax",
			Unlocked: true,
			Lessons: []model.Lesson{{
				Position: 0,
				Title:    "Variables",
				Content:  "<p>About variables.</p>",
				Quiz: &model.Quiz{
					Title: "Original Quiz",
					Questions: []model.QuizQuestion{
						{Question: "old?", Options: []string{"a", "b"}, CorrectAnswer: "a"},
					},
				},
			}},
		}},
	}
	require.NoError(t, courseRepo.Create(course))

	quiz, err := svc.Regenerate(t.Context(), quizOwner, course.ID, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "Original Quiz", quiz.Title)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, "var", quiz.Questions[0].CorrectAnswer)

	reloaded, err := courseRepo.FindByIDAndOwner(course.ID, quizOwner)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Lesson(0, 0).Quiz)
	assert.Equal(t, "What declares a variable?", reloaded.Lesson(0, 0).Quiz.Questions[0].Question)
}

func TestSubmitTransactionKeepsAggregatesAligned(t *testing.T) {
	svc, repo, courseID := newQuizFixture(t)
	db := svc.DB

	_, err := svc.Submit(quizOwner, courseID, 0, 0, 5, 5, 0)
	require.NoError(t, err)

	var profile model.XPProfile
	require.NoError(t, db.Where("user_id = ?", quizOwner).First(&profile).Error)

	course, err := repo.FindByIDAndOwner(courseID, quizOwner)
	require.NoError(t, err)

	// The completed lesson and the awarded XP come from the same commit.
	assert.True(t, course.Lesson(0, 0).Completed)
	assert.Equal(t, 50, profile.TotalXP)

	var events []model.XPEvent
	require.NoError(t, db.Where("profile_id = ?", profile.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, model.SourceQuizCompletion, events[0].Source)
	require.NotNil(t, events[0].SourceID)
	assert.Contains(t, *events[0].SourceID, courseID)
}
