package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/capabilities"
)

func newCatalog(t *testing.T) *capabilities.Registry {
	t.Helper()
	catalog, err := capabilities.NewRegistry()
	require.NoError(t, err)
	return catalog
}

func TestParseModel(t *testing.T) {
	catalog := newCatalog(t)

	tests := []struct {
		name         string
		modelStr     string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{
			name:         "gemini model",
			modelStr:     "gemini-1.5-pro",
			wantProvider: "gemini",
			wantModel:    "gemini-1.5-pro",
		},
		{
			name:         "claude-haiku with full version",
			modelStr:     "claude-haiku-4-5-20251001",
			wantProvider: "anthropic",
			wantModel:    "claude-haiku-4-5-20251001",
		},
		{
			name:         "gpt model",
			modelStr:     "gpt-4o-mini",
			wantProvider: "openai",
			wantModel:    "gpt-4o-mini",
		},
		{
			name:         "uppercase prefix",
			modelStr:     "GEMINI-1.5-FLASH",
			wantProvider: "gemini",
			wantModel:    "GEMINI-1.5-FLASH",
		},
		{
			name:         "lorem-fast model",
			modelStr:     "lorem-fast",
			wantProvider: "lorem",
			wantModel:    "lorem-fast",
		},
		{
			name:         "explicit provider for a compatible server",
			modelStr:     "openai/llama3.1:8b",
			wantProvider: "openai",
			wantModel:    "llama3.1:8b",
		},
		{
			name:     "empty string",
			modelStr: "",
			wantErr:  true,
		},
		{
			name:     "unknown model prefix",
			modelStr: "unknown-model-123",
			wantErr:  true,
		},
		{
			name:     "provider without model",
			modelStr: "openai/",
			wantErr:  true,
		},
		{
			name:     "model without provider",
			modelStr: "/gpt-4o",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModel(catalog, tt.modelStr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, got.Provider)
			assert.Equal(t, tt.wantModel, got.Model)
		})
	}
}

func TestResolveModel(t *testing.T) {
	catalog := newCatalog(t)

	tests := []struct {
		name     string
		provider string
		model    string
		want     ModelInfo
		wantErr  bool
	}{
		{"nothing configured", "", "", ModelInfo{Provider: "gemini", Model: "gemini-1.5-flash"}, false},
		{"provider only", "openai", "", ModelInfo{Provider: "openai", Model: "gpt-4o-mini"}, false},
		{"provider is case-insensitive", "Lorem", "", ModelInfo{Provider: "lorem", Model: "lorem-fast"}, false},
		{"model only", "", "claude-sonnet-4-5", ModelInfo{Provider: "anthropic", Model: "claude-sonnet-4-5"}, false},
		{"provider overrides inference", "openai", "gemini-1.5-flash", ModelInfo{Provider: "openai", Model: "gemini-1.5-flash"}, false},
		{"provider prefix stripped", "openai", "openai/qwen2", ModelInfo{Provider: "openai", Model: "qwen2"}, false},
		{"unknown provider", "bedrock", "", ModelInfo{}, true},
		{"uninferable model", "", "mistral-large", ModelInfo{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveModel(catalog, tt.provider, tt.model)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}
