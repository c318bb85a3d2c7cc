package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar API for one delegated credential. The
// server builds a fresh client per request from the session's token and
// keeps no calendar state between requests.
type Client struct {
	service *calendar.Service
	loc     *time.Location
}

// NewClient creates a calendar client around a delegated OAuth token.
func NewClient(ctx context.Context, config *oauth2.Config, token *oauth2.Token, loc *time.Location) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("oauth config is required")
	}
	if token == nil {
		return nil, fmt.Errorf("oauth token is required")
	}
	if loc == nil {
		loc = time.UTC
	}

	httpClient := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{service: service, loc: loc}, nil
}
