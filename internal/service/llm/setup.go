package llm

import (
	"fmt"

	"go.uber.org/zap"

	"parley/internal/capabilities"
	"parley/internal/config"
	domainllm "parley/internal/domain/models/llm"
	llmSvc "parley/internal/domain/services/llm"
	"parley/internal/persona"
	"parley/internal/service/llm/adapters"
)

// Setup is the configured generator together with what it resolved to
type Setup struct {
	Generator llmSvc.Generator
	Model     *ModelInfo
	Provider  *capabilities.ProviderCapabilities
	Persona   *persona.Persona
}

// SetupGenerator resolves provider and model from config and builds the
// matching adapter with the persona and fixed sampling bound in.
func SetupGenerator(cfg *config.Config, catalog *capabilities.Registry, p *persona.Persona, logger *zap.Logger) (*Setup, error) {
	return setupWithFactory(cfg, catalog, p, NewDefaultAdapterFactory(), logger)
}

func setupWithFactory(cfg *config.Config, catalog *capabilities.Registry, p *persona.Persona, factory AdapterFactory, logger *zap.Logger) (*Setup, error) {
	info, err := ResolveModel(catalog, cfg.LLMProvider, cfg.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("resolve model: %w", err)
	}

	caps, err := catalog.GetProvider(info.Provider)
	if err != nil {
		return nil, err
	}

	if _, err := catalog.GetModelCapabilities(info.Provider, info.Model); err != nil {
		// Uncatalogued models are allowed (new releases, compatible servers)
		logger.Warn("model not in catalog", zap.String("provider", info.Provider), zap.String("model", info.Model))
	}

	opts := adapters.Options{
		Persona:  p.Instruction,
		Model:    info.Model,
		Sampling: domainllm.DefaultSampling,
		APIKey:   apiKeyFor(cfg, info.Provider),
		Logger:   logger,
	}
	if info.Provider == "openai" {
		opts.BaseURL = cfg.OpenAIBaseURL
	}
	if caps.RequiresKey && opts.APIKey == "" {
		return nil, fmt.Errorf("provider %s requires an API key", info.Provider)
	}

	generator, err := factory.CreateAdapter(info.Provider, opts, caps)
	if err != nil {
		return nil, err
	}

	logger.Info("generator initialized",
		zap.String("provider", info.Provider),
		zap.String("model", info.Model),
		zap.String("convention", string(caps.Convention)),
		zap.String("persona", p.Name))

	return &Setup{
		Generator: generator,
		Model:     info,
		Provider:  caps,
		Persona:   p,
	}, nil
}

func apiKeyFor(cfg *config.Config, provider string) string {
	switch provider {
	case "gemini":
		return cfg.GeminiAPIKey
	case "openai":
		return cfg.OpenAIAPIKey
	case "anthropic":
		return cfg.AnthropicAPIKey
	}
	return ""
}
