package capabilities

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Convention is how a provider takes conversation history
type Convention string

const (
	// ConventionSession starts a chat session from the history and sends
	// only the new message per call
	ConventionSession Convention = "session"
	// ConventionFlat sends persona, history and the new message as one
	// ordered message list per call
	ConventionFlat Convention = "flat"
)

// ModelCapabilities represents the metadata for a specific model
type ModelCapabilities struct {
	// Model identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// Limits
	ContextWindow int `yaml:"context_window" json:"context_window"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`
}

// ProviderCapabilities describes one provider and its models
type ProviderCapabilities struct {
	Provider     string     `yaml:"provider" json:"provider"`
	Convention   Convention `yaml:"convention" json:"convention"`
	SupportsTopK bool       `yaml:"supports_top_k" json:"supports_top_k"`
	RequiresKey  bool       `yaml:"requires_key" json:"requires_key"`
	DefaultModel string     `yaml:"default_model" json:"default_model"`
	// ModelPrefixes identify this provider's models by name, e.g. "gemini-"
	ModelPrefixes []string            `yaml:"model_prefixes" json:"model_prefixes"`
	Models        []ModelCapabilities `yaml:"-" json:"models"` // Ordered slice, populated by custom unmarshaler
}

// UnmarshalYAML implements custom YAML unmarshaling to preserve model order from YAML file
func (p *ProviderCapabilities) UnmarshalYAML(node *yaml.Node) error {
	type plain ProviderCapabilities
	var header struct {
		plain  `yaml:",inline"`
		Models yaml.Node `yaml:"models"`
	}
	if err := node.Decode(&header); err != nil {
		return err
	}
	*p = ProviderCapabilities(header.plain)

	// models is a mapping of id -> capabilities; keep file order
	models := header.Models
	if models.Kind == 0 {
		return nil
	}
	if models.Kind != yaml.MappingNode {
		return fmt.Errorf("provider %s: models must be a mapping", p.Provider)
	}

	for j := 0; j+1 < len(models.Content); j += 2 {
		var model ModelCapabilities
		if err := models.Content[j+1].Decode(&model); err != nil {
			return fmt.Errorf("model %s: %w", models.Content[j].Value, err)
		}
		model.ID = models.Content[j].Value
		p.Models = append(p.Models, model)
	}

	return nil
}
