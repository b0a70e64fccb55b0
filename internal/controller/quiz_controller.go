package controller

import (
	"errors"

	"learnsphere_backend/internal/service"
	"learnsphere_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// swagger:model QuizCompleteRequest
type QuizCompleteRequest struct {
	CourseID       string `json:"courseId" binding:"required"`
	ChapterIndex   *int   `json:"chapterIndex" binding:"required"`
	LessonIndex    *int   `json:"lessonIndex" binding:"required"`
	Score          *int   `json:"score" binding:"required"`
	TotalQuestions int    `json:"totalQuestions" binding:"required,min=1"`
	XPReward       int    `json:"xpReward"`
}

// Complete godoc
// @Summary Submit a quiz
// @Description Grades a quiz attempt; a pass completes the lesson, may unlock the next chapter and awards XP
// @Tags quiz
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body QuizCompleteRequest true "Quiz submission"
// @Success 200 {object} util.Response{data=service.QuizOutcome} "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 404 {object} util.Response "Course or lesson not found"
// @Router /api/quiz/complete [post]
func (c *QuizController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req QuizCompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.QuizService.Submit(claims.UserID, req.CourseID,
		*req.ChapterIndex, *req.LessonIndex, *req.Score, req.TotalQuestions, req.XPReward)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		case errors.Is(err, util.ErrLessonNotFound):
			util.NotFound(ctx, "Lesson not found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, outcome)
}

// swagger:model QuizRegenerateRequest
type QuizRegenerateRequest struct {
	CourseID     string `json:"courseId" binding:"required"`
	ChapterIndex *int   `json:"chapterIndex" binding:"required"`
	LessonIndex  *int   `json:"lessonIndex" binding:"required"`
}

// Regenerate godoc
// @Summary Regenerate a quiz
// @Description Replaces a lesson's quiz questions with a fresh AI-generated set
// @Tags quiz
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body QuizRegenerateRequest true "Lesson reference"
// @Success 200 {object} util.Response{data=model.Quiz} "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 404 {object} util.Response "Course, lesson or quiz not found"
// @Failure 500 {object} util.Response "Generation failed"
// @Router /api/quiz/regenerate [post]
func (c *QuizController) Regenerate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req QuizRegenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Regenerate(ctx.Request.Context(), claims.UserID,
		req.CourseID, *req.ChapterIndex, *req.LessonIndex)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		case errors.Is(err, util.ErrLessonNotFound):
			util.NotFound(ctx, "Lesson not found")
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, "Quiz not found")
		case errors.Is(err, util.ErrAIUnavailable), errors.Is(err, util.ErrAIMalformedOutput):
			util.Error(ctx, 500, "Failed to regenerate quiz. Please try again.")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"quiz": quiz})
}
