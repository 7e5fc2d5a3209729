package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository/mocks"
	"menstrualcare-api/internal/storage"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) PutObject(_ context.Context, key string, body io.Reader, contentType string) (*storage.Object, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return &storage.Object{Bucket: "test", Key: key, Size: int64(len(data))}, nil
}

func (m *memoryStore) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://test.example/" + key + "?ttl=" + expires.String(), nil
}

func TestTranscriptService_Export(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	chats := mocks.NewMockChatRepository(ctrl)
	store := newMemoryStore()

	chat := aliceBobChat()
	chat.Messages = []domain.Message{{ID: "m1", Sender: domain.Sender{ID: "alice", Name: "Alice"}, Content: "hi"}}
	chats.EXPECT().Get(gomock.Any(), "chat-1").Return(chat, nil)

	svc := NewTranscriptService(NewChatService(chats, nil, quietLogger()), store, TranscriptOptions{
		KeyPrefix: "/transcripts/",
		LinkTTL:   time.Minute,
	})
	fixed := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	svc.(*transcriptService).now = func() time.Time { return fixed }

	out, err := svc.Export(context.Background(), "alice", "chat-1")
	req.NoError(err)
	req.Equal("transcripts/chat-1/20240501T123000Z.json", out.Key)
	req.True(strings.HasPrefix(out.URL, "https://test.example/transcripts/chat-1/"))
	req.True(out.ExpiresAt.Equal(fixed.Add(time.Minute)))
	req.Equal("application/json", store.types[out.Key])

	var doc struct {
		Conversation domain.Conversation `json:"conversation"`
		ExportedBy   string              `json:"exportedBy"`
	}
	req.NoError(json.Unmarshal(store.objects[out.Key], &doc))
	req.Equal("alice", doc.ExportedBy)
	req.Len(doc.Conversation.Messages, 1)
	req.Equal("hi", doc.Conversation.Messages[0].Content)
}

func TestTranscriptService_Export_NonParticipant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	chats := mocks.NewMockChatRepository(ctrl)
	store := newMemoryStore()
	chats.EXPECT().Get(gomock.Any(), "chat-1").Return(aliceBobChat(), nil)

	svc := NewTranscriptService(NewChatService(chats, nil, quietLogger()), store, TranscriptOptions{})
	_, err := svc.Export(context.Background(), "mallory", "chat-1")
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.Empty(t, store.objects)
}

func TestTranscriptService_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := NewTranscriptService(NewChatService(mocks.NewMockChatRepository(ctrl), nil, quietLogger()), nil, TranscriptOptions{})

	_, err := svc.Export(context.Background(), "alice", "chat-1")
	require.ErrorIs(t, err, storage.ErrNotConfigured)
}
