package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/omriShneor/donna/internal/assistant"
	"github.com/omriShneor/donna/internal/conversation"
	"github.com/omriShneor/donna/internal/intent"
	"github.com/omriShneor/donna/internal/timeutil"
)

// converseRequest is one user turn. Turns carry the recent exchange so the
// server stays stateless; activeCalendars scopes reads and deletes.
type converseRequest struct {
	Message         string              `json:"message"`
	Turns           []conversation.Turn `json:"turns,omitempty"`
	ActiveCalendars []calendarRef       `json:"activeCalendars,omitempty"`
}

type calendarRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

type converseResponse struct {
	Kind               string            `json:"kind"`
	Reply              string            `json:"reply"`
	Speech             string            `json:"speech,omitempty"`
	NeedsClarification bool              `json:"needsClarification,omitempty"`
	Create             *createPlan       `json:"create,omitempty"`
	Events             []eventResponse   `json:"events,omitempty"`
	Range              *rangeResponse    `json:"range,omitempty"`
	Delete             *deleteResolution `json:"delete,omitempty"`
}

// createPlan echoes a complete creation intent so the client can post it to
// the events endpoint once the user confirms.
type createPlan struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	AllDay          bool   `json:"allDay,omitempty"`
	Recurrence      string `json:"recurrence,omitempty"`
}

type rangeResponse struct {
	Token       string `json:"token"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// deleteResolution reports how a delete request resolved: no match, one
// candidate awaiting confirmation, or several awaiting a pick.
type deleteResolution struct {
	Outcome   string          `json:"outcome"`
	Event     *eventResponse  `json:"event,omitempty"`
	Events    []eventResponse `json:"events,omitempty"`
	Total     int             `json:"total,omitempty"`
	Truncated bool            `json:"truncated,omitempty"`
}

func (s *Server) handleConverse(w http.ResponseWriter, r *http.Request) {
	var req converseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	cal, err := s.calendarClient(r)
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	active := make([]assistant.CalendarRef, 0, len(req.ActiveCalendars))
	for _, ref := range req.ActiveCalendars {
		active = append(active, assistant.CalendarRef{ID: ref.ID, Name: ref.Name, Color: ref.Color})
	}

	result, err := s.assistant.Converse(r.Context(), cal, assistant.ConverseRequest{
		Message:         req.Message,
		Turns:           req.Turns,
		ActiveCalendars: active,
	})
	if err != nil {
		s.respondMapped(w, err)
		return
	}

	respondJSON(w, http.StatusOK, converseJSON(result))
}

func converseJSON(result *assistant.ConverseResult) converseResponse {
	resp := converseResponse{
		Kind:   string(result.Intent.Kind),
		Reply:  result.Reply,
		Speech: result.Speech,
	}

	switch result.Intent.Kind {
	case intent.KindCreate:
		create := result.Intent.Create
		if create.NeedsClarification || !create.Complete() {
			resp.NeedsClarification = true
			break
		}
		resp.Create = &createPlan{
			Title:           create.Title,
			Description:     create.Description,
			Date:            create.Date,
			Time:            create.Time,
			DurationMinutes: create.DurationMinutes,
			AllDay:          create.AllDay,
			Recurrence:      recurrenceJSON(create.Recurrence),
		}

	case intent.KindRead:
		resp.Events = eventListJSON(result.Events)
		if result.Range != nil {
			resp.Range = rangeJSON(*result.Range)
		}

	case intent.KindDelete:
		if result.Intent.Delete.NeedsClarification {
			resp.NeedsClarification = true
			break
		}
		if result.Outcome != nil {
			resp.Delete = deleteJSON(*result.Outcome)
		}
	}

	return resp
}

func rangeJSON(window timeutil.Range) *rangeResponse {
	return &rangeResponse{
		Token:       window.Token,
		Description: window.Description,
		Start:       window.Start.Format(time.RFC3339),
		End:         window.End.Format(time.RFC3339),
	}
}

func deleteJSON(outcome assistant.DeleteOutcome) *deleteResolution {
	resolution := &deleteResolution{
		Outcome:   matchKindJSON(outcome.Kind),
		Total:     outcome.Total,
		Truncated: outcome.Truncated,
	}
	if outcome.Event != nil {
		event := eventJSON(*outcome.Event)
		resolution.Event = &event
	}
	if len(outcome.Events) > 0 {
		resolution.Events = eventListJSON(outcome.Events)
	}
	return resolution
}

func matchKindJSON(kind assistant.MatchKind) string {
	switch kind {
	case assistant.MatchSingle:
		return "single"
	case assistant.MatchMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// recurrenceJSON drops the explicit "none" so it serializes as absent.
func recurrenceJSON(kind intent.RecurrenceKind) string {
	if kind == intent.RecurrenceNone {
		return ""
	}
	return string(kind)
}
