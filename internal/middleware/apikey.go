package middleware

import (
	"net/http"
	"strings"

	"github.com/postpilot/postpilot/internal/service"
)

// RequireAuth guards API routes. The Authorization header carries either the
// raw API key or a session JWT issued by /auth/token; both forms use the
// Bearer scheme.
func RequireAuth(authService *service.AuthService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			if err := authService.VerifyToken(token); err != nil {
				if err := authService.VerifyAPIKey(token); err != nil {
					unauthorized(w)
					return
				}
			}

			next(w, r)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
