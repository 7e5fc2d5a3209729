package domain

import "time"

// Participant is a conversation member resolved to its display attributes.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sender is the author of a message resolved to its display name.
type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is an immutable entry of a conversation log.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a persisted set of participants plus an ordered message log.
type Conversation struct {
	ID           string        `json:"id"`
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
	LastActivity time.Time     `json:"lastMessage"`
	IsGroup      bool          `json:"isGroupChat"`
	GroupName    string        `json:"groupName,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// HasParticipant reports whether userID is a member of the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the member ids in stored order.
func (c *Conversation) ParticipantIDs() []string {
	ids := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		ids[i] = p.ID
	}
	return ids
}
