// Package format renders event lists for the two output channels: a long
// form for chat transcripts and a short form for speech synthesis.
package format

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/omriShneor/donna/internal/gcal"
)

const noLocation = "—"

// Events renders the long-form listing. Events are grouped by calendar day
// with a weekday header per day and one line per event.
func Events(events []gcal.EventDetails, rangeDescription string) string {
	if len(events) == 0 {
		return emptySentence(rangeDescription)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("You have %s %s:\n", countNoun(len(events)), rangeDescription))

	for _, day := range groupByDay(sortedByStart(events)) {
		b.WriteString("\n")
		b.WriteString(day.date.Format("Monday, January 2"))
		b.WriteString(":\n")
		for _, event := range day.events {
			location := event.Location
			if location == "" {
				location = noLocation
			}
			b.WriteString(fmt.Sprintf("  %s - %s - %s\n", eventClock(event), eventTitle(event), location))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Speech renders the short form. Output collapses as the result set grows so
// the spoken response stays within a sentence or two.
func Speech(events []gcal.EventDetails, rangeDescription string) string {
	if len(events) == 0 {
		return emptySentence(rangeDescription)
	}

	if len(events) == 1 {
		event := events[0]
		sentence := fmt.Sprintf("You have %s", eventPhrase(event))
		if short := shortLocation(event.Location); short != "" {
			sentence += fmt.Sprintf(" in %s", short)
		}
		return sentence + "."
	}

	days := groupByDay(sortedByStart(events))

	if len(days) == 1 {
		if len(events) > 3 {
			return fmt.Sprintf("You have %s %s.", countNoun(len(events)), rangeDescription)
		}
		phrases := make([]string, 0, len(events))
		for _, event := range days[0].events {
			phrases = append(phrases, eventPhrase(event))
		}
		return fmt.Sprintf("You have %s %s: %s.", countNoun(len(events)), rangeDescription, joinNatural(phrases))
	}

	if len(events) <= 5 {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("You have %s %s.", countNoun(len(events)), rangeDescription))
		for i, day := range days {
			if i == 3 {
				break
			}
			titles := make([]string, 0, len(day.events))
			for _, event := range day.events {
				titles = append(titles, eventTitle(event))
			}
			b.WriteString(fmt.Sprintf(" %s: %s.", day.date.Format("Monday"), joinNatural(titles)))
		}
		return b.String()
	}

	return fmt.Sprintf("You have %s %s.", countNoun(len(events)), rangeDescription)
}

func emptySentence(rangeDescription string) string {
	return fmt.Sprintf("You don't have any appointments %s.", rangeDescription)
}

func countNoun(n int) string {
	if n == 1 {
		return "1 appointment"
	}
	return fmt.Sprintf("%d appointments", n)
}

func eventTitle(event gcal.EventDetails) string {
	if strings.TrimSpace(event.Summary) == "" {
		return "(no title)"
	}
	return event.Summary
}

func eventClock(event gcal.EventDetails) string {
	if event.AllDay {
		return "All day"
	}
	return event.StartTime.Format("3:04 PM")
}

// eventPhrase is the spoken fragment for one event: "Dentist at 2:00 PM" or
// "Conference all day".
func eventPhrase(event gcal.EventDetails) string {
	if event.AllDay {
		return fmt.Sprintf("%s all day", eventTitle(event))
	}
	return fmt.Sprintf("%s at %s", eventTitle(event), eventClock(event))
}

// shortLocation keeps only the text before the first comma, so a full street
// address reads as just the street when spoken.
func shortLocation(location string) string {
	head, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(head)
}

func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

type dayGroup struct {
	date   time.Time
	events []gcal.EventDetails
}

func groupByDay(events []gcal.EventDetails) []dayGroup {
	var groups []dayGroup
	index := make(map[string]int)

	for _, event := range events {
		key := event.StartTime.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, dayGroup{date: event.StartTime})
		}
		groups[i].events = append(groups[i].events, event)
	}

	return groups
}

func sortedByStart(events []gcal.EventDetails) []gcal.EventDetails {
	sorted := make([]gcal.EventDetails, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}
