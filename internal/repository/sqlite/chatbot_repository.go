package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository"
)

const createChatbotTable = `
CREATE TABLE IF NOT EXISTS chatbot_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chatbot_messages_user ON chatbot_messages(user_id);
`

type ChatbotRepository struct {
	db *sql.DB
}

func NewChatbotRepository(db *sql.DB) repository.ChatbotRepository {
	return &ChatbotRepository{db: db}
}

func (r *ChatbotRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createChatbotTable); err != nil {
		return fmt.Errorf("create chatbot table: %w", err)
	}
	return nil
}

func (r *ChatbotRepository) Append(ctx context.Context, userID string, messages ...domain.ChatbotMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chatbot append: %w", err)
	}
	defer tx.Rollback()

	for _, m := range messages {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO chatbot_messages (user_id, role, content, created_at)
VALUES (?, ?, ?, ?)`,
			userID, string(m.Role), m.Content, m.Timestamp,
		); err != nil {
			return fmt.Errorf("insert chatbot message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chatbot append: %w", err)
	}
	return nil
}

func (r *ChatbotRepository) History(ctx context.Context, userID string) ([]domain.ChatbotMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT role, content, created_at
FROM chatbot_messages
WHERE user_id = ?
ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chatbot messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.ChatbotMessage{}
	for rows.Next() {
		var (
			m    domain.ChatbotMessage
			role string
		)
		if err := rows.Scan(&role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chatbot message: %w", err)
		}
		m.Role = domain.ChatbotRole(role)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chatbot messages: %w", err)
	}
	return messages, nil
}
