package timeutil

import "time"

// CivilZone pins a named timezone to a fixed UTC offset for civil-day
// arithmetic. The standard offset is the smaller of the January and July
// offsets; when the offset at now differs, daylight saving is in effect and
// the current offset wins. Valid for a single configured zone, which is all
// the assistant ever computes against.
func CivilZone(name string, now time.Time) (*time.Location, bool) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}

	abbr, offset := now.In(loc).Zone()
	_, jan := time.Date(now.Year(), time.January, 1, 12, 0, 0, 0, loc).Zone()
	_, jul := time.Date(now.Year(), time.July, 1, 12, 0, 0, 0, loc).Zone()

	std := jan
	if jul < std {
		std = jul
	}

	return time.FixedZone(abbr, offset), offset != std
}

// DayStart returns midnight of t's calendar day in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last second of t's calendar day in t's location.
func DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
