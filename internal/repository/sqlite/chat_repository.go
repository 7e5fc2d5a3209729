package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository"
)

// Messages live in their own table keyed by (chat_id, seq); seq keeps insertion order.
const createChatTables = `
CREATE TABLE IF NOT EXISTS chats (
	id TEXT PRIMARY KEY,
	is_group INTEGER NOT NULL DEFAULT 0,
	group_name TEXT NULL,
	last_activity DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_participants (
	chat_id TEXT NOT NULL REFERENCES chats(id),
	user_id TEXT NOT NULL REFERENCES users(id),
	position INTEGER NOT NULL,
	PRIMARY KEY (chat_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id);
CREATE TABLE IF NOT EXISTS chat_messages (
	id TEXT PRIMARY KEY,
	chat_id TEXT NOT NULL REFERENCES chats(id),
	seq INTEGER NOT NULL,
	sender_id TEXT NOT NULL REFERENCES users(id),
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (chat_id, seq)
);
`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) repository.ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createChatTables); err != nil {
		return fmt.Errorf("create chat tables: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.is_group, c.group_name, c.last_activity, c.created_at
FROM chats c
JOIN chat_participants p ON p.chat_id = c.id
WHERE p.user_id = ?
ORDER BY c.last_activity DESC, c.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	var chats []domain.Conversation
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate chats: %w", err)
	}
	// the pool holds a single connection; release it before the detail queries
	rows.Close()

	for i := range chats {
		if err := r.loadDetails(ctx, r.db, &chats[i]); err != nil {
			return nil, err
		}
	}
	if chats == nil {
		chats = []domain.Conversation{}
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create chat: %w", err)
	}
	defer tx.Rollback()

	known, err := existingUserIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if missing := lo.Without(ids, known...); len(missing) > 0 {
		return nil, fmt.Errorf("unknown participants %s: %w", strings.Join(missing, ", "), domain.ErrValidation)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	var name sql.NullString
	if isGroup {
		name = sql.NullString{String: groupName, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO chats (id, is_group, group_name, last_activity, created_at)
VALUES (?, ?, ?, ?, ?)`,
		id, isGroup, name, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}

	for pos, userID := range ids {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO chat_participants (chat_id, user_id, position)
VALUES (?, ?, ?)`,
			id, userID, pos,
		); err != nil {
			return nil, fmt.Errorf("insert chat participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create chat: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *ChatRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	chat, err := scanChat(r.db.QueryRowContext(ctx, `
SELECT id, is_group, group_name, last_activity, created_at
FROM chats
WHERE id = ?`,
		id,
	))
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, r.db, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (r *ChatRepository) AppendMessage(ctx context.Context, conversationID, senderID, content string) (*domain.Message, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append message: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM chats WHERE id = ?`, conversationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chat %s: %w", conversationID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup chat: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
SELECT 1 FROM chat_participants WHERE chat_id = ? AND user_id = ?`,
		conversationID, senderID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sender %s in chat %s: %w", senderID, conversationID, domain.ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup chat participant: %w", err)
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		Sender:    domain.Sender{ID: senderID},
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO chat_messages (id, chat_id, seq, sender_id, content, created_at)
VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE chat_id = ?), ?, ?, ?)`,
		msg.ID, conversationID, conversationID, senderID, content, msg.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE chats SET last_activity = ? WHERE id = ?`,
		msg.Timestamp, conversationID,
	); err != nil {
		return nil, fmt.Errorf("touch chat: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT name FROM users WHERE id = ?`, senderID).Scan(&msg.Sender.Name); err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append message: %w", err)
	}
	return msg, nil
}

func (r *ChatRepository) loadDetails(ctx context.Context, q queryer, chat *domain.Conversation) error {
	participants, err := listParticipants(ctx, q, chat.ID)
	if err != nil {
		return err
	}
	messages, err := listMessages(ctx, q, chat.ID)
	if err != nil {
		return err
	}
	chat.Participants = participants
	chat.Messages = messages
	return nil
}

func listParticipants(ctx context.Context, q queryer, chatID string) ([]domain.Participant, error) {
	rows, err := q.QueryContext(ctx, `
SELECT u.id, u.name, u.email
FROM chat_participants p
JOIN users u ON u.id = p.user_id
WHERE p.chat_id = ?
ORDER BY p.position ASC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat participants: %w", err)
	}
	defer rows.Close()

	participants := []domain.Participant{}
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, fmt.Errorf("scan chat participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat participants: %w", err)
	}
	return participants, nil
}

func listMessages(ctx context.Context, q queryer, chatID string) ([]domain.Message, error) {
	rows, err := q.QueryContext(ctx, `
SELECT m.id, m.sender_id, u.name, m.content, m.created_at
FROM chat_messages m
JOIN users u ON u.id = m.sender_id
WHERE m.chat_id = ?
ORDER BY m.seq ASC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Sender.ID, &m.Sender.Name, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func existingUserIDs(ctx context.Context, q queryer, ids []string) ([]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := lo.Map(ids, func(id string, _ int) any { return id })

	rows, err := q.QueryContext(ctx, `SELECT id FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup participants: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant ids: %w", err)
	}
	return found, nil
}

func scanChat(row interface {
	Scan(dest ...any) error
}) (*domain.Conversation, error) {
	var (
		chat      domain.Conversation
		groupName sql.NullString
	)
	if err := row.Scan(
		&chat.ID,
		&chat.IsGroup,
		&groupName,
		&chat.LastActivity,
		&chat.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chat: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	chat.GroupName = groupName.String
	return &chat, nil
}
