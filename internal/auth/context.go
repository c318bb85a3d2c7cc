package auth

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionContextKey is the key used to store the session in request context
	SessionContextKey contextKey = "session"
)

// GetSessionFromContext extracts the session from the request context
func GetSessionFromContext(ctx context.Context) *Session {
	session, ok := ctx.Value(SessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// GetSessionID extracts the session ID from the request context
func GetSessionID(ctx context.Context) (string, error) {
	session := GetSessionFromContext(ctx)
	if session == nil {
		return "", ErrNoSession
	}
	return session.ID, nil
}

// SetSessionInContext returns a new context with the session set
func SetSessionInContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}
