// Package adapters implements one Generator per LLM provider convention.
// Persona, model and sampling are bound at construction; a Generate call
// carries only the conversation.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/domain/models/llm"
)

// Options configures an adapter. Model is resolved by the caller from the
// provider catalog; adapters do not pick defaults of their own.
type Options struct {
	Persona  string
	Model    string
	Sampling llm.Sampling
	// SupportsTopK comes from the catalog; when false top_k is never sent
	SupportsTopK bool
	APIKey       string
	BaseURL      string // SDK adapters only; empty means the provider's public endpoint
	// HTTPClient is handed to SDK adapters; nil means the SDK default
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o *Options) requireModel(provider string) error {
	if o.Model == "" {
		return fmt.Errorf("%s: model is required", provider)
	}
	return nil
}

// classify maps a provider failure to the error taxonomy. A call cut off by
// its deadline is ProviderUnavailable; anything else is a GenerationError
// carrying the provider's own text.
func classify(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, domain.ErrProviderUnavailable)
	}
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	return domain.NewGenerationError(provider, err.Error())
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string { return &v }
