package llm

import (
	"context"

	"parley/internal/domain/models/llm"
)

// ChatService defines the business logic for chat operations.
// Every method takes the verified caller; none re-verify identity.
type ChatService interface {
	// ListChats returns the caller's chats, most recently updated first
	ListChats(ctx context.Context, userID string) ([]llm.Chat, error)

	// CreateChat creates an empty chat with the placeholder title
	CreateChat(ctx context.Context, userID string) (*llm.Chat, error)

	// GetChat retrieves a chat by ID.
	// A chat owned by someone else is reported as domain.ErrNotFound
	GetChat(ctx context.Context, chatID, userID string) (*llm.Chat, error)

	// UpdateChat replaces the title and/or messages and always refreshes updated_at.
	// Returns domain.ErrNotFound or domain.ErrForbidden
	UpdateChat(ctx context.Context, chatID, userID string, req *UpdateChatRequest) error

	// DeleteChat permanently removes a chat.
	// Returns domain.ErrNotFound or domain.ErrForbidden
	DeleteChat(ctx context.Context, chatID, userID string) error
}

// UpdateChatRequest is the DTO for updating a chat.
// Nil fields (absent or JSON null) are left untouched.
type UpdateChatRequest struct {
	Title    *string     `json:"title"`
	Messages *[]llm.Turn `json:"messages"`
}
