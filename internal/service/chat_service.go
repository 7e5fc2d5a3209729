package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository"
)

// EventNewMessage is the realtime event emitted for every appended message.
const EventNewMessage = "newMessage"

var (
	ErrChatNotFound   = domain.NewError(domain.ErrNotFound, "Chat not found")
	ErrNotParticipant = domain.NewError(domain.ErrForbidden, "Not authorized")
	ErrEmptyMessage   = domain.NewError(domain.ErrValidation, "Message content is required")
)

// Broadcaster delivers an event to every connection joined to a room.
// Implementations must not block on slow receivers.
type Broadcaster interface {
	Emit(room, event string, payload any)
}

// ChatService coordinates conversations between registered users.
type ChatService interface {
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error)
	CreateConversation(ctx context.Context, userID string, participantIDs []string, isGroup bool, groupName string) (*domain.Conversation, error)
	PostMessage(ctx context.Context, userID, conversationID, content string) (*domain.Message, error)
	ListMessages(ctx context.Context, userID, conversationID string) ([]domain.Message, error)
}

type chatService struct {
	chats  repository.ChatRepository
	events Broadcaster
	logger *logrus.Logger
}

func NewChatService(chats repository.ChatRepository, events Broadcaster, logger *logrus.Logger) ChatService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &chatService{
		chats:  chats,
		events: events,
		logger: logger,
	}
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.chats.ListForUser(ctx, userID)
}

func (s *chatService) GetConversation(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	chat, err := s.chats.Get(ctx, conversationID)
	if err != nil {
		return nil, mapChatError(err)
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return chat, nil
}

func (s *chatService) CreateConversation(ctx context.Context, userID string, participantIDs []string, isGroup bool, groupName string) (*domain.Conversation, error) {
	members := lo.Union([]string{userID}, participantIDs)
	if !isGroup {
		groupName = ""
	}
	return s.chats.Create(ctx, members, isGroup, strings.TrimSpace(groupName))
}

func (s *chatService) PostMessage(ctx context.Context, userID, conversationID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	msg, err := s.chats.AppendMessage(ctx, conversationID, userID, content)
	if err != nil {
		return nil, mapChatError(err)
	}

	if s.events != nil {
		s.events.Emit(conversationID, EventNewMessage, msg)
	}
	s.logger.WithFields(logrus.Fields{
		"chat":    conversationID,
		"message": msg.ID,
	}).Debug("message appended")

	return msg, nil
}

func (s *chatService) ListMessages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	chat, err := s.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if chat.Messages == nil {
		return []domain.Message{}, nil
	}
	return chat.Messages, nil
}

func mapChatError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrChatNotFound
	case errors.Is(err, domain.ErrForbidden):
		return ErrNotParticipant
	default:
		return err
	}
}
