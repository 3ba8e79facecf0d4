package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"parley/internal/auth"
	"parley/internal/domain"
	"parley/internal/httputil"
)

// AuthMiddleware verifies the bearer token and puts the identity on the
// request context. Public paths and CORS preflights pass through.
func AuthMiddleware(verifier auth.IdentityVerifier, logger *zap.Logger, publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, err := auth.ParseBearer(r.Header.Get("Authorization"))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrUnauthenticated):
				logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			default:
				logger.Error("token verification failed", zap.String("path", r.URL.Path), zap.Error(err))
				httputil.RespondError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}

			setLoggedUser(r, identity.UserID)
			next.ServeHTTP(w, httputil.WithIdentity(r, identity))
		})
	}
}
