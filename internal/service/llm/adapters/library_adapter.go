package adapters

import (
	"context"
	"fmt"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/domain/models/llm"
)

// LibraryAdapter wraps a meridian-llm-go provider and implements Generator
// with the flat convention.
type LibraryAdapter struct {
	name     string
	provider llmprovider.Provider
	opts     Options
	logger   *zap.Logger
}

// NewLibraryAdapter creates an adapter around an existing library provider.
// top_k is sent only when opts.SupportsTopK is set.
func NewLibraryAdapter(name string, provider llmprovider.Provider, opts Options) *LibraryAdapter {
	return &LibraryAdapter{
		name:     name,
		provider: provider,
		opts:     opts,
		logger:   opts.logger().With(zap.String("provider", name)),
	}
}

// SupportsTopK reports whether requests carry top_k
func (a *LibraryAdapter) SupportsTopK() bool { return a.opts.SupportsTopK }

// Name returns the provider name
func (a *LibraryAdapter) Name() string { return a.name }

// Model returns the configured model
func (a *LibraryAdapter) Model() string { return a.opts.Model }

// Generate converts the conversation to library types and calls the provider
func (a *LibraryAdapter) Generate(ctx context.Context, messages []llm.Message, userMessage string) (string, error) {
	req := toLibraryRequest(&a.opts, messages, userMessage)

	resp, err := a.provider.GenerateResponse(ctx, req)
	if err != nil {
		a.logger.Error("generation failed", zap.Error(err))
		return "", classify(ctx, a.name, err)
	}
	if resp == nil {
		return "", domain.NewGenerationError(a.name, "empty response")
	}

	reply := replyText(resp)
	if reply == "" {
		return "", domain.NewGenerationError(a.name, fmt.Sprintf("no text in reply (stop reason %q)", resp.StopReason))
	}

	a.logger.Debug("generation complete",
		zap.String("model", resp.Model),
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens))

	return reply, nil
}
