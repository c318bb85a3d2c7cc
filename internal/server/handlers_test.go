package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/omriShneor/donna/internal/assistant"
	"github.com/omriShneor/donna/internal/auth"
	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/mocks"
	"github.com/omriShneor/donna/internal/speech"
	"github.com/omriShneor/donna/internal/testutil"
)

// stubSynth is a canned Synthesizer for handler tests.
type stubSynth struct {
	audio      []byte
	err        error
	configured bool
}

func (s *stubSynth) Synthesize(ctx context.Context, req speech.SynthesisRequest) ([]byte, error) {
	return s.audio, s.err
}

func (s *stubSynth) IsConfigured() bool {
	return s.configured
}

// testServer bundles a server with its mocks and a granted session.
type testServer struct {
	srv       *Server
	calendar  *mocks.MockCalendar
	extractor *mocks.MockExtractor
	synth     *stubSynth
	token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	calendar := new(mocks.MockCalendar)
	extractor := new(mocks.MockExtractor)
	synth := &stubSynth{audio: []byte("mp3-bytes"), configured: true}

	authService := auth.NewService()
	session := authService.Create()
	require.NoError(t, authService.Attach(session.ID, &oauth2.Token{
		AccessToken: "granted",
		Expiry:      time.Now().Add(time.Hour),
	}))

	srv := New(Config{
		Port:      0,
		Auth:      authService,
		Assistant: assistant.New(extractor, testutil.Zone, nil),
		Synth:     synth,
		Location:  testutil.Zone,
		NewCalendar: func(ctx context.Context, token *oauth2.Token) (CalendarAPI, error) {
			return calendar, nil
		},
	})

	return &testServer{
		srv:       srv,
		calendar:  calendar,
		extractor: extractor,
		synth:     synth,
		token:     session.ID,
	}
}

// do runs one request through the full middleware chain.
func (ts *testServer) do(method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthNeedsNoSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestCalendarEndpointsRequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/calendars", "/api/events"} {
		w := ts.do("GET", path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := ts.do("GET", "/api/calendars", nil, "not-a-session")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Please sign in first.")
}

func TestCalendarEndpointsRequireGrant(t *testing.T) {
	ts := newTestServer(t)

	// A session that never went through the consent flow
	bare := ts.srv.auth.Create()

	w := ts.do("GET", "/api/calendars", nil, bare.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Calendar access has not been granted. Please re-authorize.", decodeError(t, w))
}

func TestListCalendars(t *testing.T) {
	ts := newTestServer(t)
	ts.calendar.On("ListCalendars", mock.Anything).Return(testutil.Calendars(), nil)

	w := ts.do("GET", "/api/calendars", nil, ts.token)
	require.Equal(t, http.StatusOK, w.Code)

	var calendars []calendarResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &calendars))
	require.Len(t, calendars, 2)
	assert.Equal(t, "primary", calendars[0].ID)
	assert.Equal(t, "Personal", calendars[0].DisplayName)
	assert.True(t, calendars[0].IsPrimary)
	assert.Equal(t, "#9fe1e7", calendars[0].ColorHex)
	assert.False(t, calendars[1].IsPrimary)
}

func TestListEventsDefaultWindow(t *testing.T) {
	ts := newTestServer(t)

	event := testutil.TimedEvent("evt-1", "Dentist", time.Date(2026, 3, 20, 14, 0, 0, 0, testutil.Zone), time.Hour)
	ts.calendar.On("ListEventsInRange", mock.Anything, "primary", mock.Anything, mock.Anything, int64(defaultEventLimit)).
		Return([]gcal.EventDetails{event}, nil)

	w := ts.do("GET", "/api/events", nil, ts.token)
	require.Equal(t, http.StatusOK, w.Code)

	var events []eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "Dentist", events[0].Title)
	assert.Equal(t, "2026-03-20T14:00:00-05:00", events[0].Start)
	assert.Equal(t, "2026-03-20T15:00:00-05:00", events[0].End)
	assert.False(t, events[0].AllDay)
}

func TestListEventsExplicitWindow(t *testing.T) {
	ts := newTestServer(t)

	wantStart := time.Date(2026, 3, 20, 0, 0, 0, 0, testutil.Zone)
	ts.calendar.On("ListEventsInRange", mock.Anything, "work@group.calendar.google.com",
		mock.MatchedBy(func(tm time.Time) bool { return tm.Equal(wantStart) }),
		mock.MatchedBy(func(tm time.Time) bool { return tm.After(wantStart.AddDate(0, 0, 1)) }),
		int64(25),
	).Return([]gcal.EventDetails{}, nil)

	w := ts.do("GET", "/api/events?calendarId=work@group.calendar.google.com&start=2026-03-20&end=2026-03-21&maxResults=25", nil, ts.token)
	require.Equal(t, http.StatusOK, w.Code)
	ts.calendar.AssertExpectations(t)
}

func TestListEventsAllDayRendering(t *testing.T) {
	ts := newTestServer(t)

	day := time.Date(2026, 3, 20, 0, 0, 0, 0, testutil.Zone)
	ts.calendar.On("ListEventsInRange", mock.Anything, "primary", mock.Anything, mock.Anything, mock.Anything).
		Return([]gcal.EventDetails{testutil.AllDayEvent("evt-2", "Conference", day)}, nil)

	w := ts.do("GET", "/api/events", nil, ts.token)
	require.Equal(t, http.StatusOK, w.Code)

	var events []eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "2026-03-20", events[0].Start)
	assert.Equal(t, "2026-03-21", events[0].End)
	assert.True(t, events[0].AllDay)
}

func TestListEventsBadParams(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"start without end", "?start=2026-03-20"},
		{"end without start", "?end=2026-03-21"},
		{"unparseable start", "?start=tomorrow&end=2026-03-21"},
		{"end before start", "?start=2026-03-21&end=2026-03-20"},
		{"bad maxResults", "?maxResults=lots"},
		{"negative maxResults", "?maxResults=-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do("GET", "/api/events"+tt.query, nil, ts.token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateEvent(t *testing.T) {
	ts := newTestServer(t)

	created := testutil.TimedEvent("evt-new", "Lunch with Sam", time.Date(2026, 3, 20, 12, 0, 0, 0, testutil.Zone), time.Hour)
	ts.calendar.On("CreateEvent", mock.Anything, "primary", gcal.EventInput{
		Title:           "Lunch with Sam",
		Date:            "2026-03-20",
		Time:            "12:00",
		DurationMinutes: 60,
	}).Return(&created, nil)

	w := ts.do("POST", "/api/events", createEventRequest{
		Title:           "Lunch with Sam",
		Date:            "2026-03-20",
		Time:            "12:00",
		DurationMinutes: 60,
	}, ts.token)

	require.Equal(t, http.StatusCreated, w.Code)

	var event eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	assert.Equal(t, "evt-new", event.ID)
	assert.Equal(t, "Lunch with Sam", event.Title)
	ts.calendar.AssertExpectations(t)
}

func TestCreateEventValidationNamesField(t *testing.T) {
	ts := newTestServer(t)

	ts.calendar.On("CreateEvent", mock.Anything, "primary", mock.Anything).
		Return(nil, &gcal.ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD"})

	w := ts.do("POST", "/api/events", createEventRequest{Title: "Lunch", Date: "March 20"}, ts.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "invalid date")
}

func TestDeleteEvent(t *testing.T) {
	ts := newTestServer(t)
	ts.calendar.On("DeleteEvent", mock.Anything, "primary", "evt-1").Return(nil)

	w := ts.do("DELETE", "/api/events/primary/evt-1", nil, ts.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "deleted"}`, w.Body.String())
	ts.calendar.AssertExpectations(t)
}

func TestDeleteEventGone(t *testing.T) {
	ts := newTestServer(t)
	ts.calendar.On("DeleteEvent", mock.Anything, "primary", "evt-gone").Return(gcal.ErrEventNotFound)

	w := ts.do("DELETE", "/api/events/primary/evt-gone", nil, ts.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "That event no longer exists.", decodeError(t, w))
}

func TestExpiredCredentialAsksForReauthorization(t *testing.T) {
	ts := newTestServer(t)
	ts.calendar.On("ListEventsInRange", mock.Anything, "primary", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, gcal.ErrTokenExpired)

	w := ts.do("GET", "/api/events", nil, ts.token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Calendar access has not been granted. Please re-authorize.", decodeError(t, w))
}

func TestUpstreamFailureIsRetryable(t *testing.T) {
	ts := newTestServer(t)
	ts.calendar.On("ListCalendars", mock.Anything).Return(nil, errors.New("googleapi: 500 backendError"))

	w := ts.do("GET", "/api/calendars", nil, ts.token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Something went wrong. Please try again.", decodeError(t, w))
}

func TestSpeech(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/speech", speechRequest{Text: "You have 2 appointments today."}, ts.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("mp3-bytes"), w.Body.Bytes())
}

func TestSpeechEmptyText(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("POST", "/api/speech", speechRequest{Text: "   "}, ts.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text is required", decodeError(t, w))
}

func TestSpeechUnconfigured(t *testing.T) {
	ts := newTestServer(t)
	ts.synth.configured = false

	w := ts.do("POST", "/api/speech", speechRequest{Text: "Hello"}, ts.token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSpeechUpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.synth.audio = nil
	ts.synth.err = errors.New("speech API returned status 500")

	w := ts.do("POST", "/api/speech", speechRequest{Text: "Hello"}, ts.token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("OPTIONS", "/api/converse", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/health", nil, "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
