package testutil

import (
	"time"

	"github.com/omriShneor/donna/internal/gcal"
)

// Zone is the fixed civil timezone tests run in. A fixed offset keeps
// assertions stable regardless of the host's zoneinfo.
var Zone = time.FixedZone("EST", -5*60*60)

// Now is the reference instant tests resolve relative dates against:
// a Wednesday, mid-March.
var Now = time.Date(2026, 3, 18, 10, 0, 0, 0, Zone)

// TimedEvent builds a timed event on the primary calendar.
func TimedEvent(id, title string, start time.Time, duration time.Duration) gcal.EventDetails {
	return gcal.EventDetails{
		ID:         id,
		Summary:    title,
		StartTime:  start,
		EndTime:    start.Add(duration),
		CalendarID: "primary",
	}
}

// AllDayEvent builds an all-day event spanning one day.
func AllDayEvent(id, title string, day time.Time) gcal.EventDetails {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return gcal.EventDetails{
		ID:         id,
		Summary:    title,
		StartTime:  start,
		EndTime:    start.AddDate(0, 0, 1),
		AllDay:     true,
		CalendarID: "primary",
	}
}

// Calendars builds a two-calendar list: the primary plus a work calendar.
func Calendars() []gcal.CalendarInfo {
	return []gcal.CalendarInfo{
		{ID: "primary", Summary: "Personal", Primary: true, Color: "#9fe1e7"},
		{ID: "work@group.calendar.google.com", Summary: "Work", Color: "#fbe983"},
	}
}
