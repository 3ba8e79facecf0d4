package handler

import (
	"net/http"

	"go.uber.org/zap"

	llmSvc "parley/internal/domain/services/llm"
	"parley/internal/httputil"
)

// GenerateHandler serves persona replies
type GenerateHandler struct {
	generationService llmSvc.GenerationService
	logger            *zap.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(generationService llmSvc.GenerationService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		generationService: generationService,
		logger:            logger,
	}
}

// Generate returns the persona's reply. The reply is not saved.
// POST /api/generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.GenerateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)

	resp, err := h.generationService.Generate(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
