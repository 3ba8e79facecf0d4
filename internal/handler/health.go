package handler

import (
	"net/http"

	"parley/internal/httputil"
)

// HealthCheck is a simple liveness endpoint; it needs no credentials
// GET /api/health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
