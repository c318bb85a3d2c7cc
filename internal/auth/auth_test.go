package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSessionLifecycle(t *testing.T) {
	svc := NewService()

	session := svc.Create()
	require.NotEmpty(t, session.ID)
	require.Nil(t, session.Token)

	got, err := svc.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Get("not-a-session")
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Get("")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestSessionExpiry(t *testing.T) {
	svc := NewService()
	session := svc.Create()

	svc.now = func() time.Time {
		return time.Now().Add(SessionDuration + time.Hour)
	}

	_, err := svc.Get(session.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	// Expired sessions are pruned, not just rejected.
	svc.now = time.Now
	_, err = svc.Get(session.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCredential(t *testing.T) {
	svc := NewService()
	session := svc.Create()

	t.Run("no grant yet", func(t *testing.T) {
		_, err := svc.Credential(session.ID)
		assert.ErrorIs(t, err, ErrNoGrant)
	})

	t.Run("attach then read", func(t *testing.T) {
		token := &oauth2.Token{AccessToken: "ya29.test"}
		require.NoError(t, svc.Attach(session.ID, token))

		got, err := svc.Credential(session.ID)
		require.NoError(t, err)
		assert.Equal(t, "ya29.test", got.AccessToken)
	})

	t.Run("attach to unknown session", func(t *testing.T) {
		err := svc.Attach("missing", &oauth2.Token{})
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("credential of unknown session", func(t *testing.T) {
		_, err := svc.Credential("missing")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestRevoke(t *testing.T) {
	svc := NewService()
	session := svc.Create()

	svc.Revoke(session.ID)

	_, err := svc.Get(session.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRequireSession(t *testing.T) {
	svc := NewService()
	session := svc.Create()
	middleware := NewMiddleware(svc)

	var seen *Session
	handler := middleware.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/calendars", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please sign in first.")
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/calendars", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/calendars", nil)
		req.Header.Set("Authorization", "Bearer "+session.ID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, session.ID, seen.ID)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "standard bearer", header: "Bearer abc123", expected: "abc123"},
		{name: "lowercase scheme", header: "bearer abc123", expected: "abc123"},
		{name: "no header", header: "", expected: ""},
		{name: "wrong scheme", header: "Basic abc123", expected: ""},
		{name: "scheme only", header: "Bearer", expected: ""},
		{name: "extra whitespace", header: "Bearer   abc123", expected: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.expected, extractBearerToken(req))
		})
	}
}

func TestSessionContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	t.Run("empty context", func(t *testing.T) {
		assert.Nil(t, GetSessionFromContext(req.Context()))

		_, err := GetSessionID(req.Context())
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("round trip", func(t *testing.T) {
		session := &Session{ID: "s-1", CreatedAt: time.Now()}
		ctx := SetSessionInContext(req.Context(), session)

		assert.Equal(t, session, GetSessionFromContext(ctx))

		id, err := GetSessionID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "s-1", id)
	})
}
