package services

import "context"

// ResourceAuthorizer checks if a user may act on a resource.
// Write paths call it before touching a chat; the read path does not
// (it scopes its query by owner instead and answers NotFound).
type ResourceAuthorizer interface {
	// CanAccessChat returns domain.ErrNotFound if the chat does not exist
	// and domain.ErrForbidden if it exists but belongs to another user.
	CanAccessChat(ctx context.Context, userID, chatID string) error
}
