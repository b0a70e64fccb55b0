package controller

import (
	"errors"

	"learnsphere_backend/internal/service"
	"learnsphere_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// swagger:model ChatRequest
type ChatRequest struct {
	Message string                `json:"message" binding:"required"`
	History []service.ChatMessage `json:"history"`
}

// Chat godoc
// @Summary Ask the AI tutor
// @Description Sends a message plus the running history to the tutor and returns its reply
// @Tags chat
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ChatRequest true "Message and history"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Message is required"
// @Failure 500 {object} util.Response "Tutor unavailable"
// @Router /api/chat [post]
func (c *ChatController) Chat(ctx *gin.Context) {
	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Message is required.")
		return
	}

	reply, err := c.ChatService.Ask(ctx.Request.Context(), req.History, req.Message)
	if err != nil {
		if errors.Is(err, util.ErrAIUnavailable) {
			util.Error(ctx, 500, "Failed to get a response from the AI tutor.")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"reply": reply})
}
