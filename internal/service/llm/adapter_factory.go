package llm

import (
	"fmt"
	"sort"
	"strings"

	"parley/internal/capabilities"
	domainllm "parley/internal/domain/services/llm"
	"parley/internal/service/llm/adapters"
)

// AdapterFactory creates generators by provider name.
type AdapterFactory interface {
	CreateAdapter(providerName string, opts adapters.Options, caps *capabilities.ProviderCapabilities) (domainllm.Generator, error)
}

// AdapterCreatorFunc builds a generator from adapter options. Catalog-driven
// options (top-k support) are already applied when it runs.
type AdapterCreatorFunc func(opts adapters.Options) (domainllm.Generator, error)

type adapterEntry struct {
	convention capabilities.Convention
	create     AdapterCreatorFunc
}

// DefaultAdapterFactory implements AdapterFactory with a registry of adapter creators.
type DefaultAdapterFactory struct {
	creators map[string]adapterEntry
}

// NewDefaultAdapterFactory creates a new adapter factory with the bundled adapters registered.
func NewDefaultAdapterFactory() *DefaultAdapterFactory {
	factory := &DefaultAdapterFactory{
		creators: make(map[string]adapterEntry),
	}

	factory.Register("gemini", capabilities.ConventionSession, func(opts adapters.Options) (domainllm.Generator, error) {
		return adapters.NewGeminiAdapter(opts)
	})
	factory.Register("openai", capabilities.ConventionFlat, func(opts adapters.Options) (domainllm.Generator, error) {
		return adapters.NewOpenAIAdapter(opts)
	})
	factory.Register("anthropic", capabilities.ConventionFlat, func(opts adapters.Options) (domainllm.Generator, error) {
		return adapters.NewAnthropicAdapter(opts)
	})
	factory.Register("lorem", capabilities.ConventionFlat, func(opts adapters.Options) (domainllm.Generator, error) {
		return adapters.NewLoremAdapter(opts)
	})

	return factory
}

// Register adds or replaces the creator for a provider. convention is the
// calling convention the creator implements.
func (f *DefaultAdapterFactory) Register(providerName string, convention capabilities.Convention, creator AdapterCreatorFunc) {
	f.creators[providerName] = adapterEntry{convention: convention, create: creator}
}

// CreateAdapter creates an adapter for the given provider. The catalog entry
// decides top-k support and must name the convention the adapter implements.
func (f *DefaultAdapterFactory) CreateAdapter(providerName string, opts adapters.Options, caps *capabilities.ProviderCapabilities) (domainllm.Generator, error) {
	entry, exists := f.creators[providerName]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s (supported: %s)", providerName, strings.Join(f.providers(), ", "))
	}

	if caps != nil {
		if caps.Convention != entry.convention {
			return nil, fmt.Errorf("provider %s: catalog convention %q, adapter implements %q", providerName, caps.Convention, entry.convention)
		}
		opts.SupportsTopK = caps.SupportsTopK
	}

	return entry.create(opts)
}

func (f *DefaultAdapterFactory) providers() []string {
	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
