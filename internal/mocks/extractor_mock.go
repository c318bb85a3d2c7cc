package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/omriShneor/donna/internal/conversation"
	"github.com/omriShneor/donna/internal/intent"
)

// MockExtractor is a mock implementation of the intent extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractIntent(ctx context.Context, userText string, turns []conversation.Turn, now time.Time) (intent.Intent, error) {
	args := m.Called(ctx, userText, turns, now)
	if args.Get(0) == nil {
		return intent.Intent{}, args.Error(1)
	}
	return args.Get(0).(intent.Intent), args.Error(1)
}
