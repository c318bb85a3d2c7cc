package auth

import (
	"net/http"
	"strings"
)

// Middleware provides HTTP middleware for session checks
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{
		service: service,
	}
}

// RequireSession is middleware that requires a valid session token.
// The session is resolved from the bearer token and added to the request
// context; whether it carries a calendar grant is checked later, by the
// handlers that actually touch the calendar.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error": "Please sign in first."}`, http.StatusUnauthorized)
			return
		}

		session, err := m.service.Get(token)
		if err != nil {
			http.Error(w, `{"error": "Please sign in first."}`, http.StatusUnauthorized)
			return
		}

		ctx := SetSessionInContext(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the token from the Authorization header
// Expects format: "Bearer <token>"
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
