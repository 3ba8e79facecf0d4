package handler

import (
	"net/http"

	"go.uber.org/zap"

	"parley/internal/capabilities"
	"parley/internal/httputil"
)

// ModelsHandler reports the active generator and the provider catalog
type ModelsHandler struct {
	active   ActiveModel
	registry *capabilities.Registry
	logger   *zap.Logger
}

// ActiveModel is what the server generates with
type ActiveModel struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Persona  string `json:"persona"`
}

// ModelsResponse is the body of GET /api/models
type ModelsResponse struct {
	Active    ActiveModel                        `json:"active"`
	Providers []capabilities.ProviderCapabilities `json:"providers"`
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(active ActiveModel, registry *capabilities.Registry, logger *zap.Logger) *ModelsHandler {
	return &ModelsHandler{
		active:   active,
		registry: registry,
		logger:   logger,
	}
}

// GetModels returns the active provider/model and every catalogued provider
// GET /api/models
func (h *ModelsHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	names := h.registry.GetAllProviders()
	providers := make([]capabilities.ProviderCapabilities, 0, len(names))
	for _, name := range names {
		caps, err := h.registry.GetProvider(name)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		providers = append(providers, *caps)
	}

	httputil.RespondJSON(w, http.StatusOK, ModelsResponse{
		Active:    h.active,
		Providers: providers,
	})
}
