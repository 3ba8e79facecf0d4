package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"parley/internal/domain"
	"parley/internal/domain/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// SupabaseTokenResolver implements IdentityVerifier by asking Supabase Auth
// who the token belongs to (GET /auth/v1/user).
type SupabaseTokenResolver struct {
	supabaseURL string
	apiKey      string
	timeout     time.Duration
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewTokenResolver creates a resolver for the project at supabaseURL.
// apiKey is sent as the apikey header (the anon key is sufficient).
func NewTokenResolver(supabaseURL, apiKey string, timeout time.Duration, logger *zap.Logger) (*SupabaseTokenResolver, error) {
	if supabaseURL == "" {
		return nil, errors.New("supabase URL cannot be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger.Info("token resolver initialized", zap.String("supabase_url", supabaseURL))

	return &SupabaseTokenResolver{
		supabaseURL: supabaseURL,
		apiKey:      apiKey,
		timeout:     timeout,
		httpClient:  &http.Client{},
		logger:      logger,
	}, nil
}

// supabaseUser is the subset of the /auth/v1/user payload we read
type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verify resolves token against the auth provider
func (r *SupabaseTokenResolver) Verify(ctx context.Context, token string) (*models.Identity, error) {
	ctx, span := otel.Tracer("parley/auth").Start(ctx, "auth.resolve_token")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.supabaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "auth provider unreachable")
		r.logger.Error("token resolution failed", zap.Error(err))
		return nil, fmt.Errorf("resolve token: %w", domain.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		r.logger.Debug("token rejected by auth provider", zap.Int("status", resp.StatusCode))
		return nil, domain.ErrInvalidCredential
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		r.logger.Error("unexpected auth provider response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		span.SetStatus(codes.Error, "unexpected auth provider status")
		return nil, fmt.Errorf("resolve token: status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}

	var user supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		r.logger.Error("decode auth provider response", zap.Error(err))
		return nil, fmt.Errorf("decode user: %w", domain.ErrProviderUnavailable)
	}
	if user.ID == "" {
		return nil, domain.ErrInvalidCredential
	}

	return &models.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Close is a no-op; the resolver holds no long-lived resources
func (r *SupabaseTokenResolver) Close() error {
	return nil
}
