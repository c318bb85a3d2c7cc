package timeutil

import (
	"fmt"
	"time"
)

// ParseEventTime parses an event boundary as returned by the calendar API:
// RFC3339 for timed events, a bare date for all-day ones. The bool reports
// the all-day case.
func ParseEventTime(value string, loc *time.Location) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, fmt.Errorf("time value is required")
	}

	// An explicit offset is preserved, then shifted into the civil zone.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation(isoDate, value, loc); err == nil {
		return t, true, nil
	}

	return time.Time{}, false, fmt.Errorf("unable to parse time: %s", value)
}

// ValidDate reports whether value is a YYYY-MM-DD calendar date.
func ValidDate(value string) bool {
	_, err := time.Parse(isoDate, value)
	return err == nil
}

// ParseClock splits an HH:MM value into hour and minute.
func ParseClock(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to parse clock time: %s", value)
	}
	return t.Hour(), t.Minute(), nil
}
