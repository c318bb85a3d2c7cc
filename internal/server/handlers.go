package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/donna/internal/auth"
	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/speech"
	"github.com/omriShneor/donna/internal/timeutil"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 250
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// calendarResponse is the wire shape for one calendar.
type calendarResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsPrimary   bool   `json:"isPrimary"`
	ColorHex    string `json:"colorHex,omitempty"`
}

// eventResponse is the wire shape for one event. Start and End are
// RFC 3339 timestamps for timed events and bare dates for all-day ones.
type eventResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Location      string `json:"location,omitempty"`
	Start         string `json:"start"`
	End           string `json:"end"`
	AllDay        bool   `json:"allDay"`
	CalendarID    string `json:"calendarId"`
	CalendarName  string `json:"calendarName,omitempty"`
	CalendarColor string `json:"calendarColor,omitempty"`
}

func eventJSON(event gcal.EventDetails) eventResponse {
	layout := time.RFC3339
	if event.AllDay {
		layout = "2006-01-02"
	}
	return eventResponse{
		ID:            event.ID,
		Title:         event.Summary,
		Description:   event.Description,
		Location:      event.Location,
		Start:         event.StartTime.Format(layout),
		End:           event.EndTime.Format(layout),
		AllDay:        event.AllDay,
		CalendarID:    event.CalendarID,
		CalendarName:  event.CalendarName,
		CalendarColor: event.CalendarColor,
	}
}

func eventListJSON(events []gcal.EventDetails) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, eventJSON(event))
	}
	return out
}

func (s *Server) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	cal, err := s.calendarClient(r)
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	calendars, err := cal.ListCalendars(r.Context())
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	out := make([]calendarResponse, 0, len(calendars))
	for _, c := range calendars {
		out = append(out, calendarResponse{
			ID:          c.ID,
			DisplayName: c.Summary,
			IsPrimary:   c.Primary,
			ColorHex:    c.Color,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	cal, err := s.calendarClient(r)
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	calendarID := r.URL.Query().Get("calendarId")
	if calendarID == "" {
		calendarID = "primary"
	}

	start, end, err := s.parseEventWindow(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := int64(defaultEventLimit)
	if raw := r.URL.Query().Get("maxResults"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "maxResults must be a positive integer")
			return
		}
		if parsed > maxEventLimit {
			parsed = maxEventLimit
		}
		limit = parsed
	}

	events, err := cal.ListEventsInRange(r.Context(), calendarID, start, end, limit)
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, eventListJSON(events))
}

// parseEventWindow resolves the query window. Both bounds absent means the
// default upcoming window; a single bound is an error. Bounds accept
// RFC 3339 timestamps or bare dates, which expand to the day's edges.
func (s *Server) parseEventWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	if startRaw == "" && endRaw == "" {
		window := timeutil.Resolve("", time.Now().In(s.loc), s.loc)
		return window.Start, window.End, nil
	}
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start and end must be given together")
	}

	start, err := parseTimeParam(startRaw, s.loc, false)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %s", startRaw)
	}
	end, err := parseTimeParam(endRaw, s.loc, true)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %s", endRaw)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end must be after start")
	}
	return start, end, nil
}

func parseTimeParam(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return timeutil.DayEnd(day), nil
	}
	return timeutil.DayStart(day), nil
}

// createEventRequest is the wire shape for event creation. Date is
// YYYY-MM-DD; Time is HH:MM and omitted for all-day events.
type createEventRequest struct {
	CalendarID      string `json:"calendarId,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Location        string `json:"location,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	AllDay          bool   `json:"allDay,omitempty"`
	Recurrence      string `json:"recurrence,omitempty"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	cal, err := s.calendarClient(r)
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	created, err := cal.CreateEvent(r.Context(), calendarID, gcal.EventInput{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		AllDay:          req.AllDay,
		Recurrence:      req.Recurrence,
	})
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, eventJSON(*created))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	cal, err := s.calendarClient(r)
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	calendarID := r.PathValue("calendarId")
	eventID := r.PathValue("eventId")
	if calendarID == "" || eventID == "" {
		respondError(w, http.StatusBadRequest, "calendar and event ids are required")
		return
	}

	if err := cal.DeleteEvent(r.Context(), calendarID, eventID); err != nil {
		s.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// speechRequest is the wire shape for text-to-speech synthesis.
type speechRequest struct {
	Text    string  `json:"text"`
	VoiceID string  `json:"voiceId,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if s.synth == nil || !s.synth.IsConfigured() {
		respondError(w, http.StatusServiceUnavailable, "Speech synthesis is not configured.")
		return
	}

	var req speechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := s.synth.Synthesize(r.Context(), speech.SynthesisRequest{
		Text:  req.Text,
		Voice: req.VoiceID,
		Speed: req.Speed,
	})
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// calendarClient builds a calendar client from the request's session
// credential. Sign-in and grant failures surface as their sentinel errors
// for respondMapped to translate.
func (s *Server) calendarClient(r *http.Request) (CalendarAPI, error) {
	session := auth.GetSessionFromContext(r.Context())
	if session == nil {
		return nil, auth.ErrNoSession
	}

	token, err := s.auth.Credential(session.ID)
	if err != nil {
		return nil, err
	}

	return s.newCalendar(r.Context(), token)
}

// respondMapped translates pipeline errors into user-facing responses.
// Anything unrecognized is an upstream failure the user can only retry.
func (s *Server) respondMapped(w http.ResponseWriter, err error) {
	var validationErr *gcal.ValidationError

	switch {
	case errors.Is(err, auth.ErrNoSession):
		respondError(w, http.StatusUnauthorized, "Please sign in first.")
	case errors.Is(err, auth.ErrNoGrant),
		errors.Is(err, gcal.ErrTokenExpired),
		errors.Is(err, gcal.ErrCalendarForbidden):
		respondError(w, http.StatusForbidden, "Calendar access has not been granted. Please re-authorize.")
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, gcal.ErrEventNotFound):
		respondError(w, http.StatusNotFound, "That event no longer exists.")
	default:
		s.logger.Error("upstream failure", zap.Error(err))
		respondError(w, http.StatusBadGateway, "Something went wrong. Please try again.")
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
