package handler

import (
	"net/http"
	"strings"

	"parley/internal/httputil"
)

// PathParam returns the named path value, writing a 400 when it is blank
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := strings.TrimSpace(r.PathValue(name))
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}

// SuccessResponse acknowledges writes that return no resource
type SuccessResponse struct {
	Success bool `json:"success"`
}
