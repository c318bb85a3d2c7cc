package server

import (
	"net/http"

	"golang.org/x/oauth2"

	"github.com/omriShneor/donna/internal/auth"
)

// handleCreateSession mints a fresh session with no calendar grant attached.
// POST /api/auth/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := s.auth.Create()
	respondJSON(w, http.StatusCreated, map[string]string{"token": session.ID})
}

// handleAuthURL returns the Google consent URL for the caller's session.
// The session id travels in the state parameter so the callback can find it.
// GET /api/auth/url
func (s *Server) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	if s.oauthConfig == nil {
		respondError(w, http.StatusServiceUnavailable, "Google credentials are not configured.")
		return
	}

	session := auth.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "Please sign in first.")
		return
	}

	authURL := s.oauthConfig.AuthCodeURL(session.ID, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	respondJSON(w, http.StatusOK, map[string]string{"authUrl": authURL})
}

// handleAuthStatus reports whether the session carries a calendar grant,
// for clients polling while the user works through the consent screen.
// GET /api/auth/status
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	session := auth.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "Please sign in first.")
		return
	}

	_, err := s.auth.Credential(session.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"authorized": err == nil})
}

// handleAuthCallback receives the Google redirect, exchanges the code, and
// attaches the credential to the session named in state. This is the one
// auth route without a bearer token; the browser lands here directly.
// GET /api/auth/callback
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthConfig == nil {
		respondError(w, http.StatusServiceUnavailable, "Google credentials are not configured.")
		return
	}

	if declined := r.URL.Query().Get("error"); declined != "" {
		respondHTML(w, "Authorization was declined. You can close this tab and try again from the terminal.")
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		respondError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	token, err := s.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		respondError(w, http.StatusBadRequest, "authentication failed: "+err.Error())
		return
	}

	if err := s.auth.Attach(state, token); err != nil {
		s.respondMapped(w, err)
		return
	}

	respondHTML(w, "You're signed in. You can close this tab and return to the terminal.")
}

func respondHTML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><body><p>" + message + "</p></body></html>"))
}
