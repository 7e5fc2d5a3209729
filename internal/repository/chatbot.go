//go:generate go run go.uber.org/mock/mockgen -source=chatbot.go -destination=mocks/mock_chatbot_repository.go -package=mocks
package repository

import (
	"context"

	"menstrualcare-api/internal/domain"
)

// ChatbotRepository keeps one assistant session per user.
type ChatbotRepository interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, userID string, messages ...domain.ChatbotMessage) error
	History(ctx context.Context, userID string) ([]domain.ChatbotMessage, error)
}
