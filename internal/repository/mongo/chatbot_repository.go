package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository"
)

type chatbotMessageDocument struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

type chatbotSessionDocument struct {
	User     string                   `bson:"user"`
	Messages []chatbotMessageDocument `bson:"messages"`
}

type ChatbotRepository struct {
	sessions *mongo.Collection
}

func NewChatbotRepository(db *mongo.Database) repository.ChatbotRepository {
	return &ChatbotRepository{sessions: db.Collection(chatbotCollection)}
}

func (r *ChatbotRepository) Init(ctx context.Context) error {
	_, err := r.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create chatbot user index: %w", err)
	}
	return nil
}

func (r *ChatbotRepository) Append(ctx context.Context, userID string, messages ...domain.ChatbotMessage) error {
	docs := lo.Map(messages, func(m domain.ChatbotMessage, _ int) chatbotMessageDocument {
		return chatbotMessageDocument{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Truncate(time.Millisecond),
		}
	})
	_, err := r.sessions.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{"$push": bson.M{"messages": bson.M{"$each": docs}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("append chatbot messages: %w", err)
	}
	return nil
}

func (r *ChatbotRepository) History(ctx context.Context, userID string) ([]domain.ChatbotMessage, error) {
	var doc chatbotSessionDocument
	if err := r.sessions.FindOne(ctx, bson.M{"user": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []domain.ChatbotMessage{}, nil
		}
		return nil, fmt.Errorf("find chatbot session: %w", err)
	}
	return lo.Map(doc.Messages, func(m chatbotMessageDocument, _ int) domain.ChatbotMessage {
		return domain.ChatbotMessage{
			Role:      domain.ChatbotRole(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}), nil
}
