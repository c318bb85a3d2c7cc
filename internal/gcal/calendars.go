package gcal

import (
	"context"
	"fmt"
)

// CalendarInfo represents a Google Calendar the user can write to.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
	Color   string `json:"color,omitempty"`
}

// ListCalendars returns the calendars the user can create events on, which
// is what every schedule view and delete search operates over.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}

	var calendars []CalendarInfo
	pageToken := ""

	for {
		call := c.service.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, mapError(err, "failed to list calendars")
		}

		for _, item := range list.Items {
			if item == nil {
				continue
			}
			if item.AccessRole != "owner" && item.AccessRole != "writer" {
				continue
			}
			calendars = append(calendars, CalendarInfo{
				ID:      item.Id,
				Summary: item.Summary,
				Primary: item.Primary,
				Color:   item.BackgroundColor,
			})
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	return calendars, nil
}
