package repositories

import (
	"context"

	"parley/internal/domain/models/llm"
)

// ChatRepository defines data access for the chats collection.
// Implementations never apply ownership policy beyond what a method name says;
// the chat service decides between NotFound and Forbidden.
type ChatRepository interface {
	// CreateChat inserts chat and fills in its assigned ID
	CreateChat(ctx context.Context, chat *llm.Chat) error

	// GetChat retrieves a chat by ID scoped to userID.
	// Returns domain.ErrNotFound if absent or owned by someone else
	GetChat(ctx context.Context, chatID, userID string) (*llm.Chat, error)

	// GetChatByIDOnly retrieves a chat by ID with no user scoping.
	// Returns domain.ErrNotFound if absent
	GetChatByIDOnly(ctx context.Context, chatID string) (*llm.Chat, error)

	// ListChatsByUser returns the user's chats, most recently updated first.
	// Returns an empty slice if none
	ListChatsByUser(ctx context.Context, userID string) ([]llm.Chat, error)

	// UpdateChat applies patch to the chat.
	// Returns domain.ErrNotFound if the row no longer exists
	UpdateChat(ctx context.Context, chatID string, patch *llm.ChatPatch) error

	// DeleteChat permanently removes the chat.
	// Returns domain.ErrNotFound if the row no longer exists
	DeleteChat(ctx context.Context, chatID string) error
}
