package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// SessionDuration is how long session tokens are valid
	SessionDuration = 30 * 24 * time.Hour
)

var (
	// ErrNoSession means the caller presented no session or an unknown or
	// expired one.
	ErrNoSession = errors.New("no valid session")

	// ErrNoGrant means the session exists but carries no calendar
	// credential yet; the user has to go through authorization.
	ErrNoGrant = errors.New("session has no calendar grant")
)

// Session is one signed-in client. Token is the delegated Google credential
// and stays nil until the OAuth callback attaches it.
type Session struct {
	ID        string
	CreatedAt time.Time
	Token     *oauth2.Token
}

// Expired reports whether the session has outlived SessionDuration.
func (s *Session) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > SessionDuration
}

// Service hands out session tokens and holds the delegated credentials.
// Sessions live in memory only; a restart signs everyone out, which is
// acceptable for a single-user assistant.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewService creates a new session service
func NewService() *Service {
	return &Service{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create mints a fresh session with no credential attached.
func (s *Service) Create() *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns the session for a token. Unknown and expired tokens both
// report ErrNoSession; expired sessions are dropped on access.
func (s *Service) Get(id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}

	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNoSession
	}
	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrNoSession
	}

	return session, nil
}

// Attach stores the delegated credential on an existing session.
func (s *Service) Attach(id string, token *oauth2.Token) error {
	session, err := s.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	session.Token = token
	s.mu.Unlock()

	return nil
}

// Credential returns the session's Google token. A session without one
// reports ErrNoGrant so callers can tell "sign in" apart from "authorize".
func (s *Service) Credential(id string) (*oauth2.Token, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	token := session.Token
	s.mu.RUnlock()

	if token == nil {
		return nil, ErrNoGrant
	}
	return token, nil
}

// Revoke forgets a session.
func (s *Service) Revoke(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
