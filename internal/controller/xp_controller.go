package controller

import (
	"errors"
	"strconv"

	"learnsphere_backend/internal/model"
	"learnsphere_backend/internal/service"
	"learnsphere_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type XPController struct {
	XPService *service.XPService
}

func NewXPController(xpService *service.XPService) *XPController {
	return &XPController{XPService: xpService}
}

// GetProfile godoc
// @Summary XP profile
// @Description Returns the user's XP totals, level, streaks and achievements
// @Tags xp
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.XPProfile} "Success"
// @Router /api/xp [get]
func (c *XPController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.XPService.GetProfile(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// swagger:model AddXPRequest
type AddXPRequest struct {
	Amount   int    `json:"amount" binding:"required,min=1"`
	Source   string `json:"source"`
	SourceID string `json:"sourceId"`
}

// AddXP godoc
// @Summary Award XP
// @Description Adds XP to the user's profile; a repeated sourceId is a no-op
// @Tags xp
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AddXPRequest true "Award details"
// @Success 200 {object} util.Response{data=service.AddXPOutcome} "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/xp/add [post]
func (c *XPController) AddXP(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AddXPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	source := req.Source
	if source == "" {
		source = model.SourceManual
	}

	outcome, err := c.XPService.AddXP(claims.UserID, req.Amount, source, req.SourceID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, outcome)
}

// swagger:model AchievementRequest
type AchievementRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	XPReward    int    `json:"xpReward"`
}

// AddAchievement godoc
// @Summary Record an achievement
// @Description Grants a named one-time achievement with an optional XP reward
// @Tags xp
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AchievementRequest true "Achievement details"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Already earned"
// @Router /api/xp/achievement [post]
func (c *XPController) AddAchievement(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, earned, err := c.XPService.AddAchievement(claims.UserID, req.Name, req.Description, req.XPReward)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !earned {
		util.BadRequest(ctx, "Achievement already earned")
		return
	}

	util.Success(ctx, gin.H{
		"achievements": profile.Achievements,
		"totalXP":      profile.TotalXP,
		"currentLevel": profile.CurrentLevel,
	})
}

// UpdateStreak godoc
// @Summary Advance the daily streak
// @Description Extends or resets the streak based on the last activity day and pays a continuation bonus
// @Tags xp
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StreakOutcome} "Success"
// @Router /api/xp/streak [post]
func (c *XPController) UpdateStreak(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	outcome, err := c.XPService.UpdateStreak(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, outcome)
}

// swagger:model CompleteLessonRequest
type CompleteLessonRequest struct {
	LessonID string `json:"lessonId"`
	XPReward int    `json:"xpReward"`
}

// CompleteLesson godoc
// @Summary Record a lesson completion
// @Description Awards lesson XP and advances the streak; a repeated lessonId is a no-op
// @Tags xp
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CompleteLessonRequest true "Completion details"
// @Success 200 {object} util.Response{data=service.LessonOutcome} "Success"
// @Router /api/lessons/complete [post]
func (c *XPController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.XPService.CompleteLesson(claims.UserID, req.LessonID, req.XPReward)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, outcome)
}

// Leaderboard godoc
// @Summary XP leaderboard
// @Description Returns the top users ranked by total XP
// @Tags xp
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "Number of rows (default 10, max 100)"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "Success"
// @Router /api/leaderboard [get]
func (c *XPController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := c.XPService.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, entries)
}

// Rank godoc
// @Summary Current user's rank
// @Description Returns the user's position on the XP leaderboard
// @Tags xp
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "No XP profile yet"
// @Router /api/xp/rank [get]
func (c *XPController) Rank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	rank, err := c.XPService.Rank(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx, "No XP profile yet")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"rank": rank})
}
