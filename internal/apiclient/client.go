// Package apiclient is the typed HTTP client for the assistant's own API,
// used by the terminal commands. It mirrors the server's wire shapes and
// surfaces failed calls as APIError values carrying the server's message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/omriShneor/donna/internal/conversation"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetToken swaps the bearer token, for flows that mint a session first.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx response, carrying the server's user-facing message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Calendar mirrors the server's calendar shape.
type Calendar struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsPrimary   bool   `json:"isPrimary"`
	ColorHex    string `json:"colorHex,omitempty"`
}

// Event mirrors the server's event shape. Start and End are RFC 3339
// timestamps for timed events and bare dates for all-day ones.
type Event struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Location      string `json:"location,omitempty"`
	Start         string `json:"start"`
	End           string `json:"end"`
	AllDay        bool   `json:"allDay"`
	CalendarID    string `json:"calendarId"`
	CalendarName  string `json:"calendarName,omitempty"`
	CalendarColor string `json:"calendarColor,omitempty"`
}

type CalendarRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

type ConverseRequest struct {
	Message         string              `json:"message"`
	Turns           []conversation.Turn `json:"turns,omitempty"`
	ActiveCalendars []CalendarRef       `json:"activeCalendars,omitempty"`
}

type CreatePlan struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	AllDay          bool   `json:"allDay,omitempty"`
	Recurrence      string `json:"recurrence,omitempty"`
}

type RangeInfo struct {
	Token       string `json:"token"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type DeleteResolution struct {
	Outcome   string  `json:"outcome"`
	Event     *Event  `json:"event,omitempty"`
	Events    []Event `json:"events,omitempty"`
	Total     int     `json:"total,omitempty"`
	Truncated bool    `json:"truncated,omitempty"`
}

type ConverseResponse struct {
	Kind               string            `json:"kind"`
	Reply              string            `json:"reply"`
	Speech             string            `json:"speech,omitempty"`
	NeedsClarification bool              `json:"needsClarification,omitempty"`
	Create             *CreatePlan       `json:"create,omitempty"`
	Events             []Event           `json:"events,omitempty"`
	Range              *RangeInfo        `json:"range,omitempty"`
	Delete             *DeleteResolution `json:"delete,omitempty"`
}

type CreateEventRequest struct {
	CalendarID      string `json:"calendarId,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Location        string `json:"location,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	AllDay          bool   `json:"allDay,omitempty"`
	Recurrence      string `json:"recurrence,omitempty"`
}

// CreateSession mints a fresh API session and returns its token.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, "POST", "/api/auth/session", nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// AuthURL returns the Google consent URL for this session.
func (c *Client) AuthURL(ctx context.Context) (string, error) {
	var resp struct {
		AuthURL string `json:"authUrl"`
	}
	if err := c.doJSON(ctx, "GET", "/api/auth/url", nil, &resp); err != nil {
		return "", err
	}
	return resp.AuthURL, nil
}

// AuthStatus reports whether the session carries a calendar grant yet.
func (c *Client) AuthStatus(ctx context.Context) (bool, error) {
	var resp struct {
		Authorized bool `json:"authorized"`
	}
	if err := c.doJSON(ctx, "GET", "/api/auth/status", nil, &resp); err != nil {
		return false, err
	}
	return resp.Authorized, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "GET", "/api/health", nil, nil)
}

func (c *Client) ListCalendars(ctx context.Context) ([]Calendar, error) {
	var calendars []Calendar
	if err := c.doJSON(ctx, "GET", "/api/calendars", nil, &calendars); err != nil {
		return nil, err
	}
	return calendars, nil
}

func (c *Client) Converse(ctx context.Context, req ConverseRequest) (*ConverseResponse, error) {
	var resp ConverseResponse
	if err := c.doJSON(ctx, "POST", "/api/converse", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	var event Event
	if err := c.doJSON(ctx, "POST", "/api/events", req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	path := fmt.Sprintf("/api/events/%s/%s", url.PathEscape(calendarID), url.PathEscape(eventID))
	return c.doJSON(ctx, "DELETE", path, nil, nil)
}

// Synthesize converts reply text to MP3 audio via the speech endpoint.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return audio, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
