// Package assistant orchestrates one conversational turn: intent extraction,
// calendar reads and delete resolution, and the reply text for both the chat
// and speech channels. Creates and deletes themselves never happen here; the
// client confirms first and calls the event endpoints directly.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/donna/internal/conversation"
	"github.com/omriShneor/donna/internal/format"
	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/intent"
	"github.com/omriShneor/donna/internal/metrics"
	"github.com/omriShneor/donna/internal/timeutil"
)

const (
	fallbackReply = "Sorry, I didn't catch that. Could you rephrase?"
	noneReply     = "I can add events, check your schedule, and cancel appointments. What would you like to do?"
	noMatchReply  = "I couldn't find a matching event. Can you give me more detail?"
)

// Calendar is the slice of the calendar client the assistant needs. A fresh
// implementation is built per request from the session's credential.
type Calendar interface {
	ListEventsInRange(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]gcal.EventDetails, error)
}

// Extractor turns one user message into a structured intent.
type Extractor interface {
	ExtractIntent(ctx context.Context, userText string, turns []conversation.Turn, now time.Time) (intent.Intent, error)
}

// CalendarRef identifies one active calendar in a request, carrying the
// display name and color results get tagged with.
type CalendarRef struct {
	ID    string
	Name  string
	Color string
}

// ConverseRequest is one user turn plus the client-side context that travels
// with it.
type ConverseRequest struct {
	Message         string
	Turns           []conversation.Turn
	ActiveCalendars []CalendarRef
}

// ConverseResult carries the extracted intent, the composed replies, and any
// resolved event data the client needs for its next step.
type ConverseResult struct {
	Intent  intent.Intent
	Reply   string
	Speech  string
	Events  []gcal.EventDetails
	Range   *timeutil.Range
	Outcome *DeleteOutcome
}

// Service implements the converse pipeline.
type Service struct {
	extractor Extractor
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

func New(extractor Extractor, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Converse runs one turn. Extraction failures are real errors for the
// caller to convert into a retryable response; everything downstream of a
// successful extraction resolves into a reply.
func (s *Service) Converse(ctx context.Context, cal Calendar, req ConverseRequest) (*ConverseResult, error) {
	started := time.Now()
	now := s.now().In(s.loc)

	turns := req.Turns
	if len(turns) > conversation.DefaultWindow {
		turns = turns[len(turns)-conversation.DefaultWindow:]
	}

	extracted, err := s.extractor.ExtractIntent(ctx, req.Message, turns, now)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("claude").Inc()
		s.logger.Error("intent extraction failed", zap.Error(err))
		return nil, fmt.Errorf("intent extraction failed: %w", err)
	}

	metrics.ConverseTotal.WithLabelValues(string(extracted.Kind)).Inc()
	defer func() {
		metrics.ConverseDuration.WithLabelValues(string(extracted.Kind)).Observe(time.Since(started).Seconds())
	}()

	result := &ConverseResult{Intent: extracted}

	switch extracted.Kind {
	case intent.KindCreate:
		s.handleCreate(extracted.Create, result)
	case intent.KindRead:
		s.handleRead(ctx, cal, req.ActiveCalendars, extracted.Read, now, result)
	case intent.KindDelete:
		s.handleDelete(ctx, cal, req.ActiveCalendars, extracted.Delete, now, result)
	default:
		if extracted.Fallback {
			result.Reply = fallbackReply
		} else {
			result.Reply = noneReply
		}
		result.Speech = result.Reply
	}

	s.logger.Info("converse turn",
		zap.String("kind", string(extracted.Kind)),
		zap.Duration("took", time.Since(started)),
	)

	return result, nil
}

func (s *Service) handleCreate(create *intent.CreateIntent, result *ConverseResult) {
	if create.NeedsClarification || !create.Complete() {
		result.Reply = create.ClarificationPrompt
		result.Speech = create.ClarificationPrompt
		return
	}

	when := createWhen(create, s.loc)
	result.Reply = fmt.Sprintf("Should I add %q on %s? (yes/no)", create.Title, when)
	result.Speech = fmt.Sprintf("Should I add %s on %s?", create.Title, when)
}

func (s *Service) handleRead(ctx context.Context, cal Calendar, calendars []CalendarRef, read *intent.ReadIntent, now time.Time, result *ConverseResult) {
	window := timeutil.Resolve(read.RangeToken, now, s.loc)
	events := s.fetchAll(ctx, cal, calendars, window.Start, window.End)

	result.Events = events
	result.Range = &window
	result.Reply = format.Events(events, window.Description)
	result.Speech = format.Speech(events, window.Description)
}

func (s *Service) handleDelete(ctx context.Context, cal Calendar, calendars []CalendarRef, del *intent.DeleteIntent, now time.Time, result *ConverseResult) {
	// An unclear delete never reaches resolution; the question goes straight
	// back to the user.
	if del.NeedsClarification {
		result.Reply = del.ClarificationQuestion
		result.Speech = del.ClarificationQuestion
		return
	}

	outcome := s.ResolveDelete(ctx, cal, calendars, del, now)
	result.Outcome = &outcome

	switch outcome.Kind {
	case MatchNone:
		result.Reply = noMatchReply
		result.Speech = noMatchReply

	case MatchSingle:
		described := describeEvent(*outcome.Event)
		result.Reply = fmt.Sprintf("I found %q on %s. Should I delete it? (yes/no)", titleOf(*outcome.Event), described)
		result.Speech = fmt.Sprintf("I found %s on %s. Should I delete it?", titleOf(*outcome.Event), described)

	case MatchMultiple:
		result.Reply = multiMatchReply(outcome)
		result.Speech = fmt.Sprintf("I found %d matching events. Which one should I delete?", outcome.Total)
	}
}

func multiMatchReply(outcome DeleteOutcome) string {
	header := fmt.Sprintf("I found %d matching events:", outcome.Total)
	if outcome.Truncated {
		header = fmt.Sprintf("I found %d matching events. Here are the first %d:", outcome.Total, len(outcome.Events))
	}

	lines := []string{header}
	for i, event := range outcome.Events {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, titleOf(event), describeEvent(event)))
	}
	lines = append(lines, "Which one should I delete?")

	return strings.Join(lines, "\n")
}

// createWhen renders the confirmation phrase for a pending create:
// "Friday, March 20 at 2:00 PM", "Friday, March 20, all day".
func createWhen(create *intent.CreateIntent, loc *time.Location) string {
	dayText := create.Date
	if day, err := time.ParseInLocation("2006-01-02", create.Date, loc); err == nil {
		dayText = day.Format("Monday, January 2")
	}

	if create.AllDay {
		dayText += ", all day"
	} else {
		clockText := create.Time
		if hour, minute, err := timeutil.ParseClock(create.Time); err == nil {
			clockText = time.Date(2000, 1, 1, hour, minute, 0, 0, loc).Format("3:04 PM")
		}
		dayText += " at " + clockText
	}

	if create.Recurrence != "" && create.Recurrence != intent.RecurrenceNone {
		dayText += fmt.Sprintf(", repeating %s", create.Recurrence)
	}
	return dayText
}

func describeEvent(event gcal.EventDetails) string {
	if event.AllDay {
		return event.StartTime.Format("Monday, January 2") + ", all day"
	}
	return event.StartTime.Format("Monday, January 2 at 3:04 PM")
}

func titleOf(event gcal.EventDetails) string {
	if event.Summary == "" {
		return "(no title)"
	}
	return event.Summary
}
