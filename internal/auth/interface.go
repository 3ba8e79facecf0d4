package auth

import (
	"context"
	"strings"

	"parley/internal/domain"
	"parley/internal/domain/models"
)

// IdentityVerifier turns a bearer token into a verified identity.
// This abstraction keeps the middleware agnostic to whether tokens are
// resolved remotely or verified locally.
type IdentityVerifier interface {
	// Verify returns the identity behind token.
	// Errors wrap domain.ErrInvalidCredential when the token is rejected and
	// domain.ErrProviderUnavailable when the auth provider cannot answer.
	Verify(ctx context.Context, token string) (*models.Identity, error)

	// Close releases any resources held by the verifier.
	// Should be called when the verifier is no longer needed.
	Close() error
}

// ParseBearer extracts the token from an Authorization header value.
// The scheme match is case-insensitive; anything else is domain.ErrUnauthenticated.
func ParseBearer(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", domain.ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}
