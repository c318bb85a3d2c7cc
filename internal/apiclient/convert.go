package apiclient

import (
	"fmt"
	"time"

	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/timeutil"
)

// Details converts a wire event into the internal form the conversation
// machine tracks. Bare-date bounds mark the event all-day.
func (e Event) Details(loc *time.Location) (gcal.EventDetails, error) {
	start, allDay, err := timeutil.ParseEventTime(e.Start, loc)
	if err != nil {
		return gcal.EventDetails{}, fmt.Errorf("invalid event start %q: %w", e.Start, err)
	}
	end, _, err := timeutil.ParseEventTime(e.End, loc)
	if err != nil {
		return gcal.EventDetails{}, fmt.Errorf("invalid event end %q: %w", e.End, err)
	}

	return gcal.EventDetails{
		ID:            e.ID,
		Summary:       e.Title,
		Description:   e.Description,
		Location:      e.Location,
		StartTime:     start,
		EndTime:       end,
		AllDay:        allDay || e.AllDay,
		CalendarID:    e.CalendarID,
		CalendarName:  e.CalendarName,
		CalendarColor: e.CalendarColor,
	}, nil
}

// DetailsList converts a batch, dropping events with malformed bounds.
func DetailsList(events []Event, loc *time.Location) []gcal.EventDetails {
	out := make([]gcal.EventDetails, 0, len(events))
	for _, event := range events {
		details, err := event.Details(loc)
		if err != nil {
			continue
		}
		out = append(out, details)
	}
	return out
}
