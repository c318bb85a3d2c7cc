package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/donna/internal/apiclient"
	"github.com/omriShneor/donna/internal/config"
	"github.com/omriShneor/donna/internal/conversation"
	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/intent"
	"github.com/omriShneor/donna/internal/prefs"
	"github.com/omriShneor/donna/internal/timeutil"
)

// session is the client-side state behind one chat or voice run: the API
// client with the stored bearer token, the local preferences, the dialogue
// machine, and the rolling history window sent with each turn.
type session struct {
	api     *apiclient.Client
	store   *prefs.Store
	machine *conversation.Machine
	history *conversation.History
	refs    []apiclient.CalendarRef
	loc     *time.Location
	logger  *zap.Logger
}

func newSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session, error) {
	store, err := prefs.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}

	token, err := store.SessionToken()
	if err != nil || token == "" {
		store.Close()
		return nil, fmt.Errorf("not signed in; run 'donna login' first")
	}

	api := apiclient.New(cfg.ServerURL, token)
	authorized, err := api.AuthStatus(ctx)
	if err != nil {
		store.Close()
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, fmt.Errorf("session expired; run 'donna login' again")
		}
		return nil, fmt.Errorf("reaching server at %s: %w", cfg.ServerURL, err)
	}
	if !authorized {
		store.Close()
		return nil, fmt.Errorf("calendar access has not been granted; run 'donna login' again")
	}

	loc, _ := timeutil.CivilZone(cfg.Timezone, time.Now())

	s := &session{
		api:     api,
		store:   store,
		machine: conversation.NewMachine(),
		history: conversation.NewHistory(cfg.HistoryWindow),
		loc:     loc,
		logger:  logger,
	}
	s.refreshCalendars(ctx)
	return s, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// refreshCalendars pulls the calendar list from the server, folds it into
// the local store, and rebuilds the active set reads fan out over. A failed
// pull falls back to whatever the store already has.
func (s *session) refreshCalendars(ctx context.Context) {
	if remote, err := s.api.ListCalendars(ctx); err == nil {
		synced := make([]prefs.Calendar, 0, len(remote))
		for _, c := range remote {
			synced = append(synced, prefs.Calendar{ID: c.ID, Name: c.DisplayName, Color: c.ColorHex})
		}
		if err := s.store.SyncCalendars(synced); err != nil {
			s.logger.Warn("calendar sync failed", zap.Error(err))
		}
	} else {
		s.logger.Warn("listing calendars failed", zap.Error(err))
	}

	selected, err := s.store.SelectedCalendars()
	if err != nil {
		s.logger.Warn("reading selected calendars failed", zap.Error(err))
		return
	}
	s.refs = s.refs[:0]
	for _, c := range selected {
		s.refs = append(s.refs, apiclient.CalendarRef{ID: c.ID, Name: c.Name, Color: c.Color})
	}
}

// converse sends one user turn, records it in history, and moves the
// dialogue machine according to what came back.
func (s *session) converse(ctx context.Context, message string) (*apiclient.ConverseResponse, error) {
	resp, err := s.api.Converse(ctx, apiclient.ConverseRequest{
		Message:         message,
		Turns:           s.history.Turns(),
		ActiveCalendars: s.refs,
	})
	if err != nil {
		return nil, err
	}

	s.history.Add(conversation.RoleUser, message)
	s.history.Add(conversation.RoleAssistant, resp.Reply)
	s.observe(resp)
	return resp, nil
}

func (s *session) observe(resp *apiclient.ConverseResponse) {
	switch resp.Kind {
	case "create":
		// A clarification round carries no plan; the next turn re-extracts
		// with the history window as context.
		if resp.NeedsClarification || resp.Create == nil {
			return
		}
		s.machine.ObserveCreate(planIntent(resp.Create))
	case "delete":
		if resp.Delete == nil {
			return
		}
		switch resp.Delete.Outcome {
		case "single":
			if resp.Delete.Event == nil {
				return
			}
			if details, err := resp.Delete.Event.Details(s.loc); err == nil {
				s.machine.ObserveSingleMatch(details)
			}
		case "multiple":
			s.machine.ObserveMultipleMatches(apiclient.DetailsList(resp.Delete.Events, s.loc))
		}
	}
}

// executeCreate consumes the confirmed plan and creates the event on the
// last-used calendar.
func (s *session) executeCreate(ctx context.Context) (string, error) {
	create, err := s.machine.ConfirmCreate()
	if err != nil {
		return "", err
	}

	calendarID, err := s.store.LastCalendar()
	if err != nil || calendarID == "" {
		calendarID = "primary"
	}

	event, err := s.api.CreateEvent(ctx, apiclient.CreateEventRequest{
		CalendarID:      calendarID,
		Title:           create.Title,
		Description:     create.Description,
		Date:            create.Date,
		Time:            create.Time,
		DurationMinutes: create.DurationMinutes,
		AllDay:          create.AllDay,
		Recurrence:      recurrenceValue(create.Recurrence),
	})
	if err != nil {
		return "", fmt.Errorf("creating event: %w", err)
	}
	return fmt.Sprintf("Done. %s is on your calendar.", event.Title), nil
}

// executeDelete consumes the confirmed event and deletes it.
func (s *session) executeDelete(ctx context.Context) (string, error) {
	event, err := s.machine.ConfirmDelete()
	if err != nil {
		return "", err
	}
	if err := s.api.DeleteEvent(ctx, event.CalendarID, event.ID); err != nil {
		return "", fmt.Errorf("deleting event: %w", err)
	}
	return fmt.Sprintf("Okay, I've deleted %s.", eventTitle(*event)), nil
}

func planIntent(plan *apiclient.CreatePlan) *intent.CreateIntent {
	return &intent.CreateIntent{
		Date:            plan.Date,
		Time:            plan.Time,
		Title:           plan.Title,
		Description:     plan.Description,
		DurationMinutes: plan.DurationMinutes,
		AllDay:          plan.AllDay,
		Recurrence:      intent.RecurrenceKind(plan.Recurrence),
	}
}

func recurrenceValue(kind intent.RecurrenceKind) string {
	if kind == "" || kind == intent.RecurrenceNone {
		return ""
	}
	return string(kind)
}

func eventTitle(event gcal.EventDetails) string {
	if event.Summary == "" {
		return "the event"
	}
	return event.Summary
}

func eventWhen(event gcal.EventDetails) string {
	if event.AllDay {
		return event.StartTime.Format("Monday, January 2") + ", all day"
	}
	return event.StartTime.Format("Monday, January 2 at 3:04 PM")
}
