package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/omriShneor/donna/internal/assistant"
	"github.com/omriShneor/donna/internal/auth"
	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/metrics"
	"github.com/omriShneor/donna/internal/speech"
)

// CalendarAPI is the slice of the calendar client the handlers use. A fresh
// implementation is built per request from the session's credential.
type CalendarAPI interface {
	ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error)
	ListEventsInRange(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]gcal.EventDetails, error)
	CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (*gcal.EventDetails, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// CalendarFactory builds a calendar client from a delegated credential.
type CalendarFactory func(ctx context.Context, token *oauth2.Token) (CalendarAPI, error)

// Synthesizer converts reply text to audio for the speech endpoint.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.SynthesisRequest) ([]byte, error)
	IsConfigured() bool
}

type Server struct {
	auth        *auth.Service
	authMW      *auth.Middleware
	oauthConfig *oauth2.Config
	assistant   *assistant.Service
	synth       Synthesizer
	newCalendar CalendarFactory
	loc         *time.Location
	logger      *zap.Logger
	httpSrv     *http.Server
	port        int
}

// Config holds everything the server needs. Synth may be nil when
// text-to-speech is not configured; NewCalendar defaults to the real
// Google Calendar client.
type Config struct {
	Port          int
	AllowedOrigin string
	Auth          *auth.Service
	OAuth         *oauth2.Config
	Assistant     *assistant.Service
	Synth         Synthesizer
	NewCalendar   CalendarFactory
	Location      *time.Location
	Logger        *zap.Logger
}

func New(cfg Config) *Server {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Server{
		auth:        cfg.Auth,
		authMW:      auth.NewMiddleware(cfg.Auth),
		oauthConfig: cfg.OAuth,
		assistant:   cfg.Assistant,
		synth:       cfg.Synth,
		newCalendar: cfg.NewCalendar,
		loc:         cfg.Location,
		logger:      cfg.Logger,
		port:        cfg.Port,
	}

	if s.newCalendar == nil {
		s.newCalendar = func(ctx context.Context, token *oauth2.Token) (CalendarAPI, error) {
			return gcal.NewClient(ctx, s.oauthConfig, token, s.loc)
		}
	}

	allowedOrigin := cfg.AllowedOrigin
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(allowedOrigin, s.requestLogger(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check and metrics
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth API. The callback takes no bearer token; Google redirects the
	// browser there and the session rides in the state parameter.
	mux.HandleFunc("POST /api/auth/session", s.handleCreateSession)
	mux.Handle("GET /api/auth/url", s.requireSession(s.handleAuthURL))
	mux.Handle("GET /api/auth/status", s.requireSession(s.handleAuthStatus))
	mux.HandleFunc("GET /api/auth/callback", s.handleAuthCallback)

	// Calendar API
	mux.Handle("GET /api/calendars", s.requireSession(s.handleListCalendars))
	mux.Handle("GET /api/events", s.requireSession(s.handleListEvents))
	mux.Handle("POST /api/events", s.requireSession(s.handleCreateEvent))
	mux.Handle("DELETE /api/events/{calendarId}/{eventId}", s.requireSession(s.handleDeleteEvent))

	// Conversation API
	mux.Handle("POST /api/converse", s.requireSession(s.handleConverse))
	mux.Handle("POST /api/speech", s.requireSession(s.handleSpeech))
}

func (s *Server) requireSession(handler http.HandlerFunc) http.Handler {
	return s.authMW.RequireSession(handler)
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.Int("port", s.port))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers for browser and mobile clients
func (s *Server) corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("took", time.Since(started)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
