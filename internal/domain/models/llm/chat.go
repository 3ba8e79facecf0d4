package llm

import (
	"time"
)

// DefaultChatTitle is assigned to every newly created chat
const DefaultChatTitle = "New Chat"

// Chat is a persisted conversation owned by a single user.
// Messages are stored and replaced as one unit; they have no identity of their own.
type Chat struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Messages  []Message `json:"messages" db:"messages"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether the chat belongs to userID
func (c *Chat) OwnedBy(userID string) bool {
	return c.UserID == userID
}

// ChatPatch carries the optional fields of an update.
// A nil field is left untouched; UpdatedAt is always written.
type ChatPatch struct {
	Title     *string
	Messages  *[]Message
	UpdatedAt time.Time
}
