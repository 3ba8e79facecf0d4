package auth

import (
	"context"
	"errors"
	"fmt"

	"parley/internal/domain"
	"parley/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SupabaseJWTVerifier implements IdentityVerifier using JWKS from Supabase.
// Tokens are verified locally; the auth provider is only contacted to refresh keys.
type SupabaseJWTVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *zap.Logger
}

// NewJWTVerifier creates a new JWT verifier that fetches public keys from Supabase's JWKS endpoint.
// The JWKS keys are cached and automatically refreshed based on HTTP cache headers.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *zap.Logger) (*SupabaseJWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", zap.String("jwks_url", jwksURL))

	return newJWTVerifier(jwks, logger), nil
}

func newJWTVerifier(jwks keyfunc.Keyfunc, logger *zap.Logger) *SupabaseJWTVerifier {
	return &SupabaseJWTVerifier{jwks: jwks, logger: logger}
}

// Verify validates a JWT and extracts the identity from its Supabase claims.
func (v *SupabaseJWTVerifier) Verify(_ context.Context, tokenString string) (*models.Identity, error) {
	claims, err := v.verifyClaims(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

func (v *SupabaseJWTVerifier) verifyClaims(tokenString string) (*models.SupabaseClaims, error) {
	// Prevent algorithm confusion attacks - allow only RS256 or ES256
	token, err := jwt.ParseWithClaims(tokenString, &models.SupabaseClaims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token parse failed", zap.Error(err))
		return nil, domain.ErrInvalidCredential
	}
	if !token.Valid {
		return nil, domain.ErrInvalidCredential
	}

	claims, ok := token.Claims.(*models.SupabaseClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrInvalidCredential
	}

	// sub is the user ID
	if claims.GetUserID() == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrInvalidCredential
	}

	// Reject anonymous tokens
	if claims.Role != "authenticated" {
		v.logger.Debug("token has invalid role",
			zap.String("role", claims.Role),
			zap.String("user_id", claims.Subject))
		return nil, domain.ErrInvalidCredential
	}

	return claims, nil
}

// Close releases resources held by the JWT verifier.
// keyfunc v3 manages its own refresh goroutine for the lifetime of the
// context passed to NewJWTVerifier, so this only logs.
func (v *SupabaseJWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
