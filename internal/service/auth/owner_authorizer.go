package auth

import (
	"context"
	"fmt"

	"parley/internal/domain"
	"parley/internal/domain/repositories"
	"parley/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can act on a chat only if they created it.
type OwnerBasedAuthorizer struct {
	chatRepo repositories.ChatRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(chatRepo repositories.ChatRepository) services.ResourceAuthorizer {
	return &OwnerBasedAuthorizer{chatRepo: chatRepo}
}

// CanAccessChat loads the chat without user scoping so that a missing chat
// (NotFound) and someone else's chat (Forbidden) can be told apart
func (a *OwnerBasedAuthorizer) CanAccessChat(ctx context.Context, userID, chatID string) error {
	chat, err := a.chatRepo.GetChatByIDOnly(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get chat for auth: %w", err)
	}

	if !chat.OwnedBy(userID) {
		return fmt.Errorf("access denied to chat %s: %w", chatID, domain.ErrForbidden)
	}
	return nil
}
