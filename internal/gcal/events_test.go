package gcal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
)

var testZone = time.FixedZone("EST", -5*60*60)

func TestBuildEventAllDayUsesExclusiveEndDate(t *testing.T) {
	event, err := BuildEvent(EventInput{
		Title:  "Conference",
		Date:   "2026-03-15",
		AllDay: true,
	}, testZone)
	require.NoError(t, err)

	require.NotNil(t, event.Start)
	require.NotNil(t, event.End)
	assert.Equal(t, "2026-03-15", event.Start.Date)
	assert.Equal(t, "2026-03-16", event.End.Date)
	assert.Empty(t, event.Start.DateTime)
	assert.Empty(t, event.End.DateTime)
}

func TestBuildEventTimedEndFromDuration(t *testing.T) {
	tests := []struct {
		name     string
		time     string
		duration int
		wantEnd  string
	}{
		{name: "same hour", time: "14:00", duration: 45, wantEnd: "2026-03-15T14:45:00-05:00"},
		{name: "minute rollover", time: "09:30", duration: 45, wantEnd: "2026-03-15T10:15:00-05:00"},
		{name: "multi hour", time: "09:00", duration: 150, wantEnd: "2026-03-15T11:30:00-05:00"},
		{name: "default hour when unset", time: "14:00", duration: 0, wantEnd: "2026-03-15T15:00:00-05:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := BuildEvent(EventInput{
				Title:           "Dentist",
				Date:            "2026-03-15",
				Time:            tt.time,
				DurationMinutes: tt.duration,
			}, testZone)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnd, event.End.DateTime)
		})
	}
}

// The end clock wraps past midnight but the date stays on the start day, so
// a 23:30 event with a one hour duration ends at 00:30 on the same date.
func TestBuildEventDurationPastMidnightKeepsStartDate(t *testing.T) {
	event, err := BuildEvent(EventInput{
		Title:           "Late call",
		Date:            "2026-03-15",
		Time:            "23:30",
		DurationMinutes: 60,
	}, testZone)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-15T23:30:00-05:00", event.Start.DateTime)
	assert.Equal(t, "2026-03-15T00:30:00-05:00", event.End.DateTime)
}

func TestBuildEventValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     EventInput
		wantField string
	}{
		{
			name:      "missing title",
			input:     EventInput{Date: "2026-03-15", Time: "14:00"},
			wantField: "title",
		},
		{
			name:      "blank title",
			input:     EventInput{Title: "   ", Date: "2026-03-15", Time: "14:00"},
			wantField: "title",
		},
		{
			name:      "bad date",
			input:     EventInput{Title: "Dentist", Date: "15/03/2026", Time: "14:00"},
			wantField: "date",
		},
		{
			name:      "bad time",
			input:     EventInput{Title: "Dentist", Date: "2026-03-15", Time: "2pm"},
			wantField: "time",
		},
		{
			name:      "missing time without all day",
			input:     EventInput{Title: "Dentist", Date: "2026-03-15"},
			wantField: "time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildEvent(tt.input, testZone)
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestBuildEventRecurrence(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{kind: "daily", want: "RRULE:FREQ=DAILY"},
		{kind: "weekly", want: "RRULE:FREQ=WEEKLY"},
		{kind: "monthly", want: "RRULE:FREQ=MONTHLY"},
		{kind: "yearly", want: "RRULE:FREQ=YEARLY"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			event, err := BuildEvent(EventInput{
				Title:      "Standup",
				Date:       "2026-03-15",
				Time:       "09:00",
				Recurrence: tt.kind,
			}, testZone)
			require.NoError(t, err)
			require.Len(t, event.Recurrence, 1)
			assert.Equal(t, tt.want, event.Recurrence[0])
		})
	}

	t.Run("none", func(t *testing.T) {
		event, err := BuildEvent(EventInput{Title: "Standup", Date: "2026-03-15", Time: "09:00", Recurrence: "none"}, testZone)
		require.NoError(t, err)
		assert.Empty(t, event.Recurrence)
	})
}

func TestEndClock(t *testing.T) {
	tests := []struct {
		hour, minute, duration int
		wantHour, wantMinute   int
	}{
		{10, 30, 45, 11, 15},
		{9, 0, 120, 11, 0},
		{23, 30, 60, 0, 30},
		{23, 0, 90, 0, 30},
		{0, 0, 1440, 0, 0},
	}

	for _, tt := range tests {
		h, m := endClock(tt.hour, tt.minute, tt.duration)
		assert.Equal(t, tt.wantHour, h, "%02d:%02d + %d", tt.hour, tt.minute, tt.duration)
		assert.Equal(t, tt.wantMinute, m, "%02d:%02d + %d", tt.hour, tt.minute, tt.duration)
	}
}

func TestParseEventTimes(t *testing.T) {
	t.Run("all day", func(t *testing.T) {
		start, end, allDay, err := parseEventTimes(&calendar.Event{
			Start: &calendar.EventDateTime{Date: "2026-03-18"},
			End:   &calendar.EventDateTime{Date: "2026-03-19"},
		}, testZone)
		require.NoError(t, err)
		assert.True(t, allDay)
		assert.Equal(t, 18, start.Day())
		assert.Equal(t, 19, end.Day())
	})

	t.Run("timed", func(t *testing.T) {
		start, end, allDay, err := parseEventTimes(&calendar.Event{
			Start: &calendar.EventDateTime{DateTime: "2026-03-18T14:00:00-05:00"},
			End:   &calendar.EventDateTime{DateTime: "2026-03-18T15:00:00-05:00"},
		}, testZone)
		require.NoError(t, err)
		assert.False(t, allDay)
		assert.Equal(t, 14, start.In(testZone).Hour())
		assert.Equal(t, 15, end.In(testZone).Hour())
	})

	t.Run("missing bounds", func(t *testing.T) {
		_, _, _, err := parseEventTimes(&calendar.Event{}, testZone)
		assert.Error(t, err)

		_, _, _, err = parseEventTimes(nil, testZone)
		assert.Error(t, err)
	})
}
