package adapters

import (
	"errors"
	"fmt"

	"github.com/haowjy/meridian-llm-go/providers/anthropic"
)

const anthropicName = "anthropic"

// NewAnthropicAdapter creates a Claude adapter. The persona is sent as the
// system param.
func NewAnthropicAdapter(opts Options) (*LibraryAdapter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable not set")
	}
	if err := opts.requireModel(anthropicName); err != nil {
		return nil, err
	}

	provider, err := anthropic.NewProvider(opts.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	return NewLibraryAdapter(anthropicName, provider, opts), nil
}
