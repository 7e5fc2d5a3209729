package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/storage"
)

var ErrTranscriptsDisabled = domain.NewError(storage.ErrNotConfigured, "Transcript storage is not configured")

// Transcript points at an archived copy of a conversation.
type Transcript struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TranscriptService archives conversations to object storage.
type TranscriptService interface {
	Export(ctx context.Context, userID, conversationID string) (*Transcript, error)
}

type TranscriptOptions struct {
	KeyPrefix string
	LinkTTL   time.Duration
}

type transcriptService struct {
	chats ChatService
	store storage.Service
	opts  TranscriptOptions
	now   func() time.Time
}

// NewTranscriptService returns a service that reports ErrTranscriptsDisabled
// when store is nil.
func NewTranscriptService(chats ChatService, store storage.Service, opts TranscriptOptions) TranscriptService {
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = 15 * time.Minute
	}
	return &transcriptService{
		chats: chats,
		store: store,
		opts:  opts,
		now:   time.Now,
	}
}

type transcriptDocument struct {
	Conversation *domain.Conversation `json:"conversation"`
	ExportedBy   string               `json:"exportedBy"`
	ExportedAt   time.Time            `json:"exportedAt"`
}

func (s *transcriptService) Export(ctx context.Context, userID, conversationID string) (*Transcript, error) {
	if s.store == nil {
		return nil, ErrTranscriptsDisabled
	}

	chat, err := s.chats.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	exportedAt := s.now().UTC()
	body, err := json.MarshalIndent(transcriptDocument{
		Conversation: chat,
		ExportedBy:   userID,
		ExportedAt:   exportedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}

	key := path.Join(strings.Trim(s.opts.KeyPrefix, "/"), chat.ID, exportedAt.Format("20060102T150405Z")+".json")
	obj, err := s.store.PutObject(ctx, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	url, err := s.store.PresignGet(ctx, obj.Key, s.opts.LinkTTL)
	if err != nil {
		return nil, err
	}

	return &Transcript{
		Key:       obj.Key,
		URL:       url,
		ExpiresAt: exportedAt.Add(s.opts.LinkTTL),
	}, nil
}
