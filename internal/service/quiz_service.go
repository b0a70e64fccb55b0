package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/repository"
	"learnsphere_backend/internal/util"
	"learnsphere_backend/pkg/logger"
	"learnsphere_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	passThreshold = 50

	defaultQuizXP        = 15
	perfectScoreBonus    = 10
	goodScoreBonus       = 5
	goodScoreThreshold   = 90
	chapterCompleteBonus = 25
)

// QuizService grades quiz submissions and cascades the resulting lesson
// completion, chapter unlock and XP award. Both aggregates are written in
// a single transaction so a failed save cannot leave the course and the
// ledger disagreeing.
type QuizService struct {
	DB         *gorm.DB
	CourseRepo *repository.CourseRepository
	XPRepo     *repository.XPRepository
	AI         Generator
}

func NewQuizService(db *gorm.DB, courseRepo *repository.CourseRepository, xpRepo *repository.XPRepository, ai Generator) *QuizService {
	return &QuizService{
		DB:         db,
		CourseRepo: courseRepo,
		XPRepo:     xpRepo,
		AI:         ai,
	}
}

// QuizOutcome is the grading result returned to the client.
type QuizOutcome struct {
	Message               string `json:"message"`
	Passed                bool   `json:"passed"`
	Score                 int    `json:"score"`
	TotalQuestions        int    `json:"totalQuestions"`
	Percentage            int    `json:"percentage"`
	XPEarned              int    `json:"xpEarned"`
	LeveledUp             bool   `json:"leveledUp"`
	NewLevel              int    `json:"newLevel,omitempty"`
	TotalXP               int    `json:"totalXP,omitempty"`
	CurrentLevel          int    `json:"currentLevel,omitempty"`
	Attempts              int    `json:"attempts"`
	ChapterCompleted      bool   `json:"chapterCompleted"`
	IsLastLessonInChapter bool   `json:"isLastLessonInChapter"`
	RequiredPercentage    int    `json:"requiredPercentage,omitempty"`
}

// Submit grades a quiz submission for the lesson at (chapterIndex,
// lessonIndex). A failing score only records the attempt; a passing score
// completes the lesson, may complete the chapter and unlock the next one,
// and awards XP with score and chapter bonuses. Resubmissions of an
// already-awarded pass still count the attempt but award nothing.
func (s *QuizService) Submit(userID uint, courseID string, chapterIndex, lessonIndex, score, totalQuestions, xpReward int) (*QuizOutcome, error) {
	if totalQuestions <= 0 {
		return nil, fmt.Errorf("totalQuestions must be positive")
	}
	if xpReward <= 0 {
		xpReward = defaultQuizXP
	}

	percentage := int(math.Round(float64(score) / float64(totalQuestions) * 100))
	passed := percentage >= passThreshold

	course, err := s.CourseRepo.FindByIDAndOwner(courseID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lesson := course.Lesson(chapterIndex, lessonIndex)
	if lesson == nil {
		return nil, util.ErrLessonNotFound
	}

	lesson.Attempts++
	lesson.QuizScore = percentage
	lesson.QuizPassed = passed

	outcome := &QuizOutcome{
		Passed:                passed,
		Score:                 score,
		TotalQuestions:        totalQuestions,
		Percentage:            percentage,
		Attempts:              lesson.Attempts,
		IsLastLessonInChapter: lessonIndex == len(course.Chapters[chapterIndex].Lessons)-1,
	}

	if !passed {
		outcome.Message = fmt.Sprintf("You need %d%% to unlock the next lesson. You scored %d%%. Try again!", passThreshold, percentage)
		outcome.RequiredPercentage = passThreshold
		if err := s.DB.Save(lesson).Error; err != nil {
			return nil, err
		}
		return outcome, nil
	}

	lesson.Completed = true
	chapterCompleted := course.IsChapterCompleted(chapterIndex)

	finalXP := xpReward
	if percentage == 100 {
		finalXP += perfectScoreBonus
	} else if percentage >= goodScoreThreshold {
		finalXP += goodScoreBonus
	}
	if chapterCompleted {
		finalXP += chapterCompleteBonus
	}

	sourceID := fmt.Sprintf("%s_%d_%d", courseID, chapterIndex, lessonIndex)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(lesson).Error; err != nil {
			return err
		}

		if chapterCompleted && chapterIndex+1 < len(course.Chapters) {
			next := &course.Chapters[chapterIndex+1]
			next.Unlocked = true
			if err := tx.Model(&model.Chapter{}).
				Where("id = ?", next.ID).
				Update("unlocked", true).Error; err != nil {
				return err
			}
		}

		xpRepo := s.XPRepo.WithTx(tx)
		profile, err := xpRepo.FindOrCreateByUser(userID)
		if err != nil {
			return err
		}

		seen, err := xpRepo.HasEvent(profile.ID, model.SourceQuizCompletion, sourceID)
		if err != nil {
			return err
		}
		if seen {
			outcome.NewLevel = profile.CurrentLevel
			outcome.TotalXP = profile.TotalXP
			outcome.CurrentLevel = profile.CurrentLevel
			return nil
		}

		result := profile.AddXP(finalXP, model.SourceQuizCompletion, sourceID)
		if err := xpRepo.Save(profile); err != nil {
			return err
		}
		monitoring.XPAwarded.WithLabelValues(model.SourceQuizCompletion).Add(float64(result.Awarded))

		outcome.XPEarned = result.Awarded
		outcome.LeveledUp = result.LeveledUp
		outcome.NewLevel = result.NewLevel
		outcome.TotalXP = profile.TotalXP
		outcome.CurrentLevel = profile.CurrentLevel
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.ChapterCompleted = chapterCompleted
	if chapterCompleted {
		outcome.Message = "Chapter completed! Next chapter unlocked."
	} else {
		outcome.Message = "Quiz passed! Next lesson unlocked."
	}

	logger.Log.Info("quiz graded",
		zap.Uint("userId", userID),
		zap.String("courseId", courseID),
		zap.Int("chapter", chapterIndex),
		zap.Int("lesson", lessonIndex),
		zap.Int("percentage", percentage),
		zap.Bool("passed", passed),
		zap.Int("xpEarned", outcome.XPEarned))

	return outcome, nil
}

var quizGenSchema = map[string]any{
	"type":     "object",
	"required": []any{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"question", "options", "correctAnswer"},
				"properties": map[string]any{
					"question":      map[string]any{"type": "string"},
					"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"correctAnswer": map[string]any{"type": "string"},
				},
			},
		},
	},
}

func quizRegenPrompt(lesson *model.Lesson) string {
	return fmt.Sprintf(`Generate a new quiz for the lesson titled %q.

Lesson content: %q

Create 5 different multiple-choice questions based on this lesson content. Make sure these are NEW questions, different from any previous attempts.

Return ONLY a JSON object in this exact format:
{
  "questions": [
    {
      "question": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "Option A"
    }
  ]
}

Make the questions challenging but fair, testing understanding of the key concepts.`, lesson.Title, lesson.Content)
}

// Regenerate replaces a lesson's quiz questions with a fresh AI-generated
// set, keeping the quiz title. On any failure the stored quiz is left
// untouched.
func (s *QuizService) Regenerate(ctx context.Context, userID uint, courseID string, chapterIndex, lessonIndex int) (*model.Quiz, error) {
	course, err := s.CourseRepo.FindByIDAndOwner(courseID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lesson := course.Lesson(chapterIndex, lessonIndex)
	if lesson == nil {
		return nil, util.ErrLessonNotFound
	}
	if lesson.Quiz == nil {
		return nil, util.ErrQuizNotFound
	}

	raw, err := s.AI.GenerateJSON(ctx, quizRegenPrompt(lesson), quizGenSchema)
	if err != nil {
		return nil, err
	}

	var gen genQuiz
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, util.ErrAIMalformedOutput
	}

	gen.Title = lesson.Quiz.Title
	quiz := normalizeQuiz(&gen, lesson.Title)
	if quiz == nil {
		return nil, util.ErrAIMalformedOutput
	}

	lesson.Quiz = quiz
	if err := s.CourseRepo.SaveLesson(lesson); err != nil {
		return nil, err
	}
	return quiz, nil
}
