package domain

import "time"

type ChatbotRole string

const (
	ChatbotRoleUser      ChatbotRole = "user"
	ChatbotRoleAssistant ChatbotRole = "assistant"
)

// ChatbotMessage is one turn of a user's conversation with the assistant.
type ChatbotMessage struct {
	Role      ChatbotRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}
