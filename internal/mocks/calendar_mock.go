package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/omriShneor/donna/internal/gcal"
)

// MockCalendar is a mock implementation of the calendar client surface
type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gcal.CalendarInfo), args.Error(1)
}

func (m *MockCalendar) ListEventsInRange(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]gcal.EventDetails, error) {
	args := m.Called(ctx, calendarID, timeMin, timeMax, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gcal.EventDetails), args.Error(1)
}

func (m *MockCalendar) CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (*gcal.EventDetails, error) {
	args := m.Called(ctx, calendarID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.EventDetails), args.Error(1)
}

func (m *MockCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	args := m.Called(ctx, calendarID, eventID)
	return args.Error(0)
}
