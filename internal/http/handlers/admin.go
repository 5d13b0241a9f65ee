package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"strafenkasse-service/internal/http/requestutil"
	"strafenkasse-service/internal/logging"
)

// RequireAdmin guards mutating routes with a static bearer token. An empty
// token disables the guard, which keeps local development friction-free.
func RequireAdmin(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokenMatches(r, token) {
				logging.Warn(loggerFromContext(r, logger), "admin unauthorized",
					slog.String(logging.FieldPath, r.URL.Path),
					slog.String("client_ip", requestutil.ClientIP(r)),
				)
				writeError(w, r, http.StatusUnauthorized, "unauthorized", logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenMatches(r *http.Request, token string) bool {
	presented := r.Header.Get("X-Admin-Token")
	if presented == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			presented = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
