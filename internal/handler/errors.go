package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Client mistakes carry the validation text; server-side failures get a
// generic message, except generation failures which pass the provider's
// error through as details.
func handleError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var genErr *domain.GenerationError

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMalformedHistory):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredential):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "chat not found")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "forbidden")
	case errors.As(err, &genErr):
		httputil.RespondErrorWithDetails(w, genErr.StatusCode(), "failed to generate response", genErr.Details)
	default:
		logger.Error("request failed", zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
