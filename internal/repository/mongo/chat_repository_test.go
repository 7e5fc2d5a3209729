package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"menstrualcare-api/internal/domain"
)

func TestChatDocument_ToDomain(t *testing.T) {
	req := require.New(t)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	gone := primitive.NewObjectID()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	doc := chatDocument{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{alice, bob, gone},
		Messages: []messageDocument{
			{ID: primitive.NewObjectID(), Sender: alice, Content: "hi", Timestamp: ts},
			{ID: primitive.NewObjectID(), Sender: gone, Content: "bye", Timestamp: ts.Add(time.Minute)},
		},
		LastMessage: ts.Add(time.Minute),
		IsGroupChat: true,
		GroupName:   "friends",
		CreatedAt:   ts,
	}
	req.ElementsMatch([]primitive.ObjectID{alice, bob, gone}, doc.userIDs())

	users := map[primitive.ObjectID]userDocument{
		alice: {ID: alice, Name: "Alice", Email: "a@x.com"},
		bob:   {ID: bob, Name: "Bob", Email: "b@x.com"},
	}
	chat := doc.toDomain(users)

	req.Equal(doc.ID.Hex(), chat.ID)
	req.Len(chat.Participants, 2, "unresolved participants are dropped")
	req.Equal("Alice", chat.Participants[0].Name)
	req.Equal("b@x.com", chat.Participants[1].Email)
	req.Len(chat.Messages, 2)
	req.Equal("Alice", chat.Messages[0].Sender.Name)
	req.Empty(chat.Messages[1].Sender.Name)
	req.Equal(gone.Hex(), chat.Messages[1].Sender.ID)
	req.True(chat.LastActivity.Equal(ts.Add(time.Minute)))
	req.Equal("friends", chat.GroupName)
}

func TestObjectID_InvalidHexIsNotFound(t *testing.T) {
	_, err := objectID("not-an-object-id")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// Runs against a live server when MCARE_TEST_MONGO_URI is set.
func TestChatRepository_Live(t *testing.T) {
	uri := os.Getenv("MCARE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MCARE_TEST_MONGO_URI not set")
	}
	req := require.New(t)
	ctx := context.Background()

	client, db, err := Open(ctx, uri, "menstrualcare_test_"+primitive.NewObjectID().Hex())
	req.NoError(err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	users := NewUserRepository(db)
	chats := NewChatRepository(db)
	req.NoError(users.Init(ctx))
	req.NoError(chats.Init(ctx))

	alice := &domain.User{Name: "Alice", Email: "a@x.com", PasswordHash: "h"}
	bob := &domain.User{Name: "Bob", Email: "b@x.com", PasswordHash: "h"}
	_, err = users.Create(ctx, alice)
	req.NoError(err)
	_, err = users.Create(ctx, bob)
	req.NoError(err)

	chat, err := chats.Create(ctx, []string{alice.ID}, false, "")
	req.NoError(err)

	msg, err := chats.AppendMessage(ctx, chat.ID, alice.ID, "hi")
	req.NoError(err)
	req.Equal("Alice", msg.Sender.Name)

	_, err = chats.AppendMessage(ctx, chat.ID, bob.ID, "intruder")
	req.ErrorIs(err, domain.ErrForbidden)

	_, err = chats.AppendMessage(ctx, primitive.NewObjectID().Hex(), alice.ID, "void")
	req.ErrorIs(err, domain.ErrNotFound)

	reloaded, err := chats.Get(ctx, chat.ID)
	req.NoError(err)
	req.Len(reloaded.Messages, 1)
	req.True(reloaded.LastActivity.Equal(msg.Timestamp))
}
