package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/intent"
	"github.com/omriShneor/donna/internal/timeutil"
)

// maxDeleteMatches caps how many candidates are shown; the true total is
// still reported.
const maxDeleteMatches = 10

// MatchKind tags a delete resolution outcome.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchSingle
	MatchMultiple
)

// DeleteOutcome is the result of resolving a delete request against the
// calendar. The actual deletion only happens after the user confirms.
type DeleteOutcome struct {
	Kind      MatchKind
	Event     *gcal.EventDetails
	Events    []gcal.EventDetails
	Total     int
	Truncated bool
}

// ResolveDelete finds the events a delete request could mean. The search
// window is the named day when the intent carries a date, otherwise 30 days
// around now. Filters narrow in a fixed order: title substring, then exact
// clock time, then time-of-day range.
func (s *Service) ResolveDelete(ctx context.Context, cal Calendar, calendars []CalendarRef, del *intent.DeleteIntent, now time.Time) DeleteOutcome {
	var timeMin, timeMax time.Time
	if del.Date != "" && timeutil.ValidDate(del.Date) {
		day, _ := time.ParseInLocation("2006-01-02", del.Date, s.loc)
		timeMin = timeutil.DayStart(day)
		timeMax = timeutil.DayEnd(day)
	} else {
		timeMin = timeutil.DayStart(now.AddDate(0, 0, -30))
		timeMax = timeutil.DayEnd(now.AddDate(0, 0, 30))
	}

	candidates := s.fetchAll(ctx, cal, calendars, timeMin, timeMax)

	if del.SearchTerm != "" {
		candidates = filterByTitle(candidates, del.SearchTerm)
	}
	if del.Time != "" {
		candidates = filterByClock(candidates, del.Time)
	}
	if del.TimeRangeStart != "" && del.TimeRangeEnd != "" {
		candidates = filterByWindow(candidates, del.TimeRangeStart, del.TimeRangeEnd)
	}

	switch len(candidates) {
	case 0:
		return DeleteOutcome{Kind: MatchNone}
	case 1:
		event := candidates[0]
		return DeleteOutcome{Kind: MatchSingle, Event: &event, Total: 1}
	}

	total := len(candidates)
	truncated := total > maxDeleteMatches
	if truncated {
		candidates = candidates[:maxDeleteMatches]
	}

	return DeleteOutcome{
		Kind:      MatchMultiple,
		Events:    candidates,
		Total:     total,
		Truncated: truncated,
	}
}

func filterByTitle(events []gcal.EventDetails, term string) []gcal.EventDetails {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return events
	}

	var out []gcal.EventDetails
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Summary), needle) {
			out = append(out, event)
		}
	}
	return out
}

// filterByClock keeps timed events whose hour matches exactly and whose
// minute is within half an hour of the target. All-day events never match a
// clock filter.
func filterByClock(events []gcal.EventDetails, clock string) []gcal.EventDetails {
	hour, minute, err := timeutil.ParseClock(clock)
	if err != nil {
		return events
	}

	var out []gcal.EventDetails
	for _, event := range events {
		if event.AllDay || event.StartTime.Hour() != hour {
			continue
		}
		diff := event.StartTime.Minute() - minute
		if diff < 0 {
			diff = -diff
		}
		if diff <= 30 {
			out = append(out, event)
		}
	}
	return out
}

// filterByWindow keeps timed events starting inside [start, end] expressed
// as minutes of the local day, bounds inclusive.
func filterByWindow(events []gcal.EventDetails, start, end string) []gcal.EventDetails {
	startHour, startMinute, err := timeutil.ParseClock(start)
	if err != nil {
		return events
	}
	endHour, endMinute, err := timeutil.ParseClock(end)
	if err != nil {
		return events
	}

	lo := startHour*60 + startMinute
	hi := endHour*60 + endMinute

	var out []gcal.EventDetails
	for _, event := range events {
		if event.AllDay {
			continue
		}
		m := event.StartTime.Hour()*60 + event.StartTime.Minute()
		if m >= lo && m <= hi {
			out = append(out, event)
		}
	}
	return out
}
