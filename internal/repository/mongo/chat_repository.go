package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository"
)

type messageDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Sender    primitive.ObjectID `bson:"sender"`
	Content   string             `bson:"content"`
	Timestamp time.Time          `bson:"timestamp"`
}

type chatDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Participants []primitive.ObjectID `bson:"participants"`
	Messages     []messageDocument    `bson:"messages"`
	LastMessage  time.Time            `bson:"lastMessage"`
	IsGroupChat  bool                 `bson:"isGroupChat"`
	GroupName    string               `bson:"groupName,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
}

func (d chatDocument) userIDs() []primitive.ObjectID {
	ids := append([]primitive.ObjectID{}, d.Participants...)
	for _, m := range d.Messages {
		ids = append(ids, m.Sender)
	}
	return lo.Uniq(ids)
}

func (d chatDocument) toDomain(users map[primitive.ObjectID]userDocument) domain.Conversation {
	participants := lo.FilterMap(d.Participants, func(id primitive.ObjectID, _ int) (domain.Participant, bool) {
		u, ok := users[id]
		return domain.Participant{ID: id.Hex(), Name: u.Name, Email: u.Email}, ok
	})
	messages := lo.Map(d.Messages, func(m messageDocument, _ int) domain.Message {
		return m.toDomain(users[m.Sender].Name)
	})
	return domain.Conversation{
		ID:           d.ID.Hex(),
		Participants: participants,
		Messages:     messages,
		LastActivity: d.LastMessage,
		IsGroup:      d.IsGroupChat,
		GroupName:    d.GroupName,
		CreatedAt:    d.CreatedAt,
	}
}

func (m messageDocument) toDomain(senderName string) domain.Message {
	return domain.Message{
		ID:        m.ID.Hex(),
		Sender:    domain.Sender{ID: m.Sender.Hex(), Name: senderName},
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

type ChatRepository struct {
	chats *mongo.Collection
	users *mongo.Collection
}

func NewChatRepository(db *mongo.Database) repository.ChatRepository {
	return &ChatRepository{
		chats: db.Collection(chatsCollection),
		users: db.Collection(usersCollection),
	}
}

func (r *ChatRepository) Init(ctx context.Context) error {
	_, err := r.chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}}},
		{Keys: bson.D{{Key: "lastMessage", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create chat indexes: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Conversation{}, nil
	}

	cur, err := r.chats.Find(ctx,
		bson.M{"participants": oid},
		options.Find().SetSort(bson.D{{Key: "lastMessage", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	var docs []chatDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}

	var ids []primitive.ObjectID
	for _, d := range docs {
		ids = append(ids, d.userIDs()...)
	}
	users, err := displayNames(ctx, r.users, lo.Uniq(ids))
	if err != nil {
		return nil, err
	}

	chats := make([]domain.Conversation, len(docs))
	for i, d := range docs {
		chats[i] = d.toDomain(users)
	}
	return chats, nil
}

func (r *ChatRepository) Create(ctx context.Context, participantIDs []string, isGroup bool, groupName string) (*domain.Conversation, error) {
	ids := lo.Uniq(lo.Filter(participantIDs, func(id string, _ int) bool {
		return strings.TrimSpace(id) != ""
	}))
	if len(ids) == 0 {
		return nil, fmt.Errorf("conversation needs at least one participant: %w", domain.ErrValidation)
	}

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("participant %q: %w", id, domain.ErrValidation)
		}
		oids = append(oids, oid)
	}

	known, err := r.users.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("lookup participants: %w", err)
	}
	if int(known) != len(oids) {
		return nil, fmt.Errorf("unknown participants: %w", domain.ErrValidation)
	}

	ts := now()
	doc := chatDocument{
		ID:           primitive.NewObjectID(),
		Participants: oids,
		Messages:     []messageDocument{},
		LastMessage:  ts,
		IsGroupChat:  isGroup,
		CreatedAt:    ts,
	}
	if isGroup {
		doc.GroupName = groupName
	}
	if _, err := r.chats.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}

	users, err := displayNames(ctx, r.users, doc.userIDs())
	if err != nil {
		return nil, err
	}
	chat := doc.toDomain(users)
	return &chat, nil
}

func (r *ChatRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc chatDocument
	if err := r.chats.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("chat: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}

	users, err := displayNames(ctx, r.users, doc.userIDs())
	if err != nil {
		return nil, err
	}
	chat := doc.toDomain(users)
	return &chat, nil
}

// AppendMessage relies on a single filtered update so that the membership
// check, the push and the lastMessage bump are applied atomically.
func (r *ChatRepository) AppendMessage(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	chatID, err := objectID(conversationID)
	if err != nil {
		return nil, err
	}
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, fmt.Errorf("sender %q: %w", senderID, domain.ErrForbidden)
	}

	msg := messageDocument{
		ID:        primitive.NewObjectID(),
		Sender:    sender,
		Content:   content,
		Timestamp: now(),
	}
	res, err := r.chats.UpdateOne(ctx,
		bson.M{"_id": chatID, "participants": sender},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"lastMessage": msg.Timestamp},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	if res.MatchedCount == 0 {
		exists, err := r.chats.CountDocuments(ctx, bson.M{"_id": chatID})
		if err != nil {
			return nil, fmt.Errorf("lookup chat: %w", err)
		}
		if exists == 0 {
			return nil, fmt.Errorf("chat %s: %w", conversationID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("sender %s in chat %s: %w", senderID, conversationID, domain.ErrForbidden)
	}

	users, err := displayNames(ctx, r.users, []primitive.ObjectID{sender})
	if err != nil {
		return nil, err
	}
	out := msg.toDomain(users[sender].Name)
	return &out, nil
}
