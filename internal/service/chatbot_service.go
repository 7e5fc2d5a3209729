package service

import (
	"context"
	"strings"
	"time"

	"menstrualcare-api/internal/chatbot"
	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository"
)

var ErrEmptyQuestion = domain.NewError(domain.ErrValidation, "Message is required")

// ChatbotService answers questions from the static knowledge base and keeps
// a per-user history of the exchange.
type ChatbotService interface {
	Ask(ctx context.Context, userID, question string) (string, []domain.ChatbotMessage, error)
	History(ctx context.Context, userID string) ([]domain.ChatbotMessage, error)
}

type chatbotService struct {
	sessions repository.ChatbotRepository
	matcher  *chatbot.Matcher
	now      func() time.Time
}

func NewChatbotService(sessions repository.ChatbotRepository, matcher *chatbot.Matcher) ChatbotService {
	if matcher == nil {
		matcher = chatbot.NewMatcher(chatbot.DefaultTopics)
	}
	return &chatbotService{
		sessions: sessions,
		matcher:  matcher,
		now:      time.Now,
	}
}

func (s *chatbotService) Ask(ctx context.Context, userID, question string) (string, []domain.ChatbotMessage, error) {
	if strings.TrimSpace(question) == "" {
		return "", nil, ErrEmptyQuestion
	}

	answer := s.matcher.Respond(question)
	ts := s.now().UTC()
	err := s.sessions.Append(ctx, userID,
		domain.ChatbotMessage{Role: domain.ChatbotRoleUser, Content: question, Timestamp: ts},
		domain.ChatbotMessage{Role: domain.ChatbotRoleAssistant, Content: answer, Timestamp: ts},
	)
	if err != nil {
		return "", nil, err
	}

	history, err := s.sessions.History(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return answer, history, nil
}

func (s *chatbotService) History(ctx context.Context, userID string) ([]domain.ChatbotMessage, error) {
	return s.sessions.History(ctx, userID)
}
