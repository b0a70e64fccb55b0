package service

import (
	"context"
)

const tutorSystemPrompt = "You are LearnSphere Tutor, a friendly and encouraging AI assistant designed to help students learn effectively. You provide clear explanations, answer questions, and offer study tips. Always be supportive and patient."

// ChatService fronts the AI tutor. It is stateless; the client sends the
// running history with every message.
type ChatService struct {
	AI Generator
}

func NewChatService(ai Generator) *ChatService {
	return &ChatService{AI: ai}
}

func (s *ChatService) Ask(ctx context.Context, history []ChatMessage, message string) (string, error) {
	return s.AI.Chat(ctx, tutorSystemPrompt, history, message)
}
