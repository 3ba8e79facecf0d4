package llm

import (
	"fmt"
	"strings"

	"parley/internal/capabilities"
)

// DefaultProvider is used when neither LLM_PROVIDER nor LLM_MODEL is set
const DefaultProvider = "gemini"

// ModelInfo contains parsed provider and model information
type ModelInfo struct {
	Provider string // Provider name: "gemini", "openai", "anthropic", "lorem"
	Model    string // Model identifier for that provider
}

// ParseModel extracts provider information from a model string
//
// Supported formats:
//   - "gemini-1.5-flash" → {Provider: "gemini", Model: "gemini-1.5-flash"}
//   - "lorem-fast" → {Provider: "lorem", Model: "lorem-fast"}
//   - "openai/llama3.1" → {Provider: "openai", Model: "llama3.1"}
//
// Rules:
//   - If model contains "/" → split on first "/" to extract provider
//   - Else → infer provider from the catalog's model prefixes
func ParseModel(catalog *capabilities.Registry, modelStr string) (*ModelInfo, error) {
	if modelStr == "" {
		return nil, fmt.Errorf("model string cannot be empty")
	}

	if provider, model, ok := strings.Cut(modelStr, "/"); ok {
		if provider == "" {
			return nil, fmt.Errorf("provider cannot be empty in model string: %s", modelStr)
		}
		if model == "" {
			return nil, fmt.Errorf("model cannot be empty in model string: %s", modelStr)
		}
		return &ModelInfo{Provider: provider, Model: model}, nil
	}

	provider := catalog.InferProvider(modelStr)
	if provider == "" {
		return nil, fmt.Errorf("unable to infer provider from model: %s", modelStr)
	}

	return &ModelInfo{Provider: provider, Model: modelStr}, nil
}

// ResolveModel picks the provider and model from configuration.
// An explicit provider wins over inference; an empty model falls back to
// the provider's catalog default.
func ResolveModel(catalog *capabilities.Registry, provider, model string) (*ModelInfo, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	model = strings.TrimSpace(model)

	var info *ModelInfo
	switch {
	case provider != "":
		info = &ModelInfo{Provider: provider, Model: model}
		if p, m, ok := strings.Cut(model, "/"); ok && p == provider {
			info.Model = m
		}
	case model != "":
		parsed, err := ParseModel(catalog, model)
		if err != nil {
			return nil, err
		}
		info = parsed
	default:
		info = &ModelInfo{Provider: DefaultProvider}
	}

	caps, err := catalog.GetProvider(info.Provider)
	if err != nil {
		return nil, err
	}
	if info.Model == "" {
		info.Model = caps.DefaultModel
	}

	return info, nil
}
