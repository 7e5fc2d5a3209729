//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=mocks/mock_chat_repository.go -package=mocks
package repository

import (
	"context"

	"menstrualcare-api/internal/domain"
)

// ChatRepository persists conversations and their embedded message logs.
//
// Conversations come back with participants resolved to name and email and
// message senders resolved to name.
type ChatRepository interface {
	Init(ctx context.Context) error
	// ListForUser returns the conversations userID takes part in, most recent activity first.
	ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error)
	// Create fails with domain.ErrValidation when participantIDs is empty after dedup.
	Create(ctx context.Context, participantIDs []string, isGroup bool, groupName string) (*domain.Conversation, error)
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	// AppendMessage atomically appends to the log and moves lastActivity to the message timestamp.
	AppendMessage(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error)
}
