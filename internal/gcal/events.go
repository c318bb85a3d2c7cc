package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/omriShneor/donna/internal/timeutil"
)

// EventInput carries the slots for a new event. Date is YYYY-MM-DD; Time is
// HH:MM and empty for all-day events; Recurrence is one of daily, weekly,
// monthly, yearly or empty.
type EventInput struct {
	Title           string
	Description     string
	Location        string
	Date            string
	Time            string
	DurationMinutes int
	AllDay          bool
	Recurrence      string
}

// EventDetails represents a single calendar event, tagged with the calendar
// it came from once an orchestrator has merged several calendars.
type EventDetails struct {
	ID            string
	Summary       string
	Description   string
	Location      string
	StartTime     time.Time
	EndTime       time.Time
	AllDay        bool
	CalendarID    string
	CalendarName  string
	CalendarColor string
}

// ValidationError reports a rejected event input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BuildEvent validates input and assembles the API payload. Validation runs
// before any network call and names the offending field.
func BuildEvent(input EventInput, loc *time.Location) (*calendar.Event, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "title is required"}
	}
	if !timeutil.ValidDate(input.Date) {
		return nil, &ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD"}
	}

	event := &calendar.Event{
		Summary:     strings.TrimSpace(input.Title),
		Description: input.Description,
		Location:    input.Location,
	}
	if rule := recurrenceRule(input.Recurrence); rule != "" {
		event.Recurrence = []string{rule}
	}

	day, _ := time.ParseInLocation("2006-01-02", input.Date, loc)

	if input.AllDay {
		// All-day events carry an exclusive end date on the following day.
		event.Start = &calendar.EventDateTime{Date: input.Date}
		event.End = &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format("2006-01-02")}
		return event, nil
	}

	if input.Time == "" {
		return nil, &ValidationError{Field: "time", Reason: "time is required unless the event is all day"}
	}
	hour, minute, err := timeutil.ParseClock(input.Time)
	if err != nil {
		return nil, &ValidationError{Field: "time", Reason: "time must be HH:MM"}
	}

	duration := input.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	endHour, endMinute := endClock(hour, minute, duration)
	end := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMinute, 0, 0, loc)

	event.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)}
	event.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}
	return event, nil
}

// endClock advances HH:MM by a duration. Minutes and hours wrap but the date
// does not: an event whose duration crosses midnight keeps its start date.
func endClock(hour, minute, durationMinutes int) (int, int) {
	total := minute + durationMinutes
	return (hour + total/60) % 24, total % 60
}

func recurrenceRule(kind string) string {
	switch strings.ToLower(kind) {
	case "daily":
		return "RRULE:FREQ=DAILY"
	case "weekly":
		return "RRULE:FREQ=WEEKLY"
	case "monthly":
		return "RRULE:FREQ=MONTHLY"
	case "yearly":
		return "RRULE:FREQ=YEARLY"
	}
	return ""
}

// CreateEvent creates a new event and returns its stored details.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventDetails, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	event, err := BuildEvent(input, c.loc)
	if err != nil {
		return nil, err
	}

	created, err := c.service.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "failed to create event")
	}

	details, err := eventDetails(created, calendarID, c.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created event: %w", err)
	}
	return details, nil
}

// DeleteEvent removes an event. Deleting an event that no longer exists
// reports ErrEventNotFound rather than silently succeeding.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if c.service == nil {
		return fmt.Errorf("calendar service not initialized")
	}
	if eventID == "" {
		return &ValidationError{Field: "event_id", Reason: "event id is required"}
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	if err := c.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return mapError(err, "failed to delete event")
	}
	return nil
}

// ListEventsInRange returns events in a time window, ordered by start time.
// Cancelled and malformed upstream entries are skipped. A maxResults of zero
// means no cap.
func (c *Client) ListEventsInRange(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]EventDetails, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}
	if timeMax.Before(timeMin) {
		return nil, &ValidationError{Field: "time_max", Reason: "time_max is before time_min"}
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	var result []EventDetails
	pageToken := ""

	for {
		call := c.service.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, mapError(err, "failed to list events in range")
		}

		for _, item := range events.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}

			details, parseErr := eventDetails(item, calendarID, c.loc)
			if parseErr != nil {
				// Skip malformed events rather than failing the whole request.
				continue
			}
			result = append(result, *details)

			if maxResults > 0 && int64(len(result)) >= maxResults {
				return result, nil
			}
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	return result, nil
}

func eventDetails(item *calendar.Event, calendarID string, loc *time.Location) (*EventDetails, error) {
	startTime, endTime, allDay, err := parseEventTimes(item, loc)
	if err != nil {
		return nil, err
	}

	return &EventDetails{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		StartTime:   startTime,
		EndTime:     endTime,
		AllDay:      allDay,
		CalendarID:  calendarID,
	}, nil
}

func parseEventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, bool, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, true, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return startTime.In(loc), endTime.In(loc), false, nil
}
