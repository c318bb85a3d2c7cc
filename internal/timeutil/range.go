package timeutil

import (
	"strings"
	"time"
)

// Range is a resolved calendar window with inclusive civil-day bounds.
type Range struct {
	Start       time.Time
	End         time.Time
	Token       string
	Description string
}

const isoDate = "2006-01-02"

// Resolve maps a symbolic range token plus the current wall clock to concrete
// bounds in loc. Unrecognized tokens resolve to the upcoming week rather than
// erroring; an unparseable request is treated as "show me what's coming".
func Resolve(token string, now time.Time, loc *time.Location) Range {
	today := DayStart(now.In(loc))

	if rest, ok := strings.CutPrefix(token, "week_of:"); ok {
		if d, err := time.ParseInLocation(isoDate, rest, loc); err == nil {
			// Sunday through Saturday containing the given date.
			start := DayStart(d.AddDate(0, 0, -int(d.Weekday())))
			return Range{
				Start:       start,
				End:         DayEnd(start.AddDate(0, 0, 6)),
				Token:       token,
				Description: "the week of " + start.Format("January 2"),
			}
		}
		return upcomingRange(token, today)
	}

	if d, err := time.ParseInLocation(isoDate, token, loc); err == nil {
		return Range{
			Start:       DayStart(d),
			End:         DayEnd(d),
			Token:       token,
			Description: "on " + d.Format("January 2"),
		}
	}

	switch token {
	case "today":
		return Range{Start: today, End: DayEnd(today), Token: token, Description: "today"}
	case "yesterday":
		d := today.AddDate(0, 0, -1)
		return Range{Start: d, End: DayEnd(d), Token: token, Description: "yesterday"}
	case "tomorrow":
		d := today.AddDate(0, 0, 1)
		return Range{Start: d, End: DayEnd(d), Token: token, Description: "tomorrow"}
	case "this_week":
		start := mondayOf(today)
		return Range{Start: start, End: DayEnd(start.AddDate(0, 0, 6)), Token: token, Description: "this week"}
	case "next_week":
		start := mondayOf(today).AddDate(0, 0, 7)
		return Range{Start: start, End: DayEnd(start.AddDate(0, 0, 6)), Token: token, Description: "next week"}
	case "last_week", "past_week":
		// Rolling 7-day lookback, not aligned to week boundaries like this_week.
		return Range{Start: today.AddDate(0, 0, -7), End: DayEnd(today), Token: token, Description: "in the past week"}
	case "last_month":
		return Range{Start: today.AddDate(0, 0, -30), End: DayEnd(today), Token: token, Description: "in the past month"}
	}

	return upcomingRange(token, today)
}

// mondayOf returns the Monday starting the week that contains day.
func mondayOf(day time.Time) time.Time {
	idx := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return day.AddDate(0, 0, -idx)
}

func upcomingRange(token string, today time.Time) Range {
	return Range{
		Start:       today,
		End:         DayEnd(today.AddDate(0, 0, 7)),
		Token:       token,
		Description: "in the next 7 days",
	}
}
