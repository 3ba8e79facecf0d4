package llm

import (
	"context"

	"parley/internal/domain/models/llm"
)

// Generator wraps one LLM provider's calling convention.
// Model, sampling and persona are fixed when the Generator is built.
type Generator interface {
	// Generate returns the reply to userMessage given the prior history.
	// Provider failures are *domain.GenerationError; deadline expiry is
	// domain.ErrProviderUnavailable.
	Generate(ctx context.Context, history []llm.Message, userMessage string) (string, error)

	// Name returns the provider name (e.g., "gemini", "openai")
	Name() string

	// Model returns the model identifier sent to the provider
	Model() string
}

// GenerationService runs the generate endpoint's workflow
type GenerationService interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is the DTO for a generate call
type GenerateRequest struct {
	UserID  string     `json:"-"` // Set by handler from auth context
	Message string     `json:"message"`
	ChatID  *string    `json:"chatId,omitempty"`
	History []llm.Turn `json:"history,omitempty"`
}

// GenerateResponse is the reply returned to the client
type GenerateResponse struct {
	Response string `json:"response"`
}
