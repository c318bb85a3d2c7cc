package assistant

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omriShneor/donna/internal/gcal"
	"github.com/omriShneor/donna/internal/metrics"
	"github.com/omriShneor/donna/internal/timeutil"
)

// Read resolves a range token and returns the merged events from every
// active calendar.
func (s *Service) Read(ctx context.Context, cal Calendar, calendars []CalendarRef, rangeToken string) ([]gcal.EventDetails, timeutil.Range) {
	now := s.now().In(s.loc)
	window := timeutil.Resolve(rangeToken, now, s.loc)
	return s.fetchAll(ctx, cal, calendars, window.Start, window.End), window
}

// fetchAll fans out one fetch per calendar and concatenates the results in
// start order. A failed calendar contributes zero events instead of failing
// the whole read, so partial results always win over an error.
func (s *Service) fetchAll(ctx context.Context, cal Calendar, calendars []CalendarRef, timeMin, timeMax time.Time) []gcal.EventDetails {
	if len(calendars) == 0 {
		calendars = []CalendarRef{{ID: "primary"}}
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make([][]gcal.EventDetails, len(calendars))

	for i, ref := range calendars {
		g.Go(func() error {
			events, err := cal.ListEventsInRange(ctx, ref.ID, timeMin, timeMax, 0)
			if err != nil {
				metrics.CalendarFetchFailures.Inc()
				s.logger.Warn("calendar fetch failed",
					zap.String("calendar_id", ref.ID),
					zap.Error(err),
				)
				return nil
			}
			for j := range events {
				events[j].CalendarName = ref.Name
				events[j].CalendarColor = ref.Color
			}
			results[i] = events
			return nil
		})
	}

	// Goroutines swallow their errors; Wait only joins.
	_ = g.Wait()

	var merged []gcal.EventDetails
	for _, events := range results {
		merged = append(merged, events...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTime.Before(merged[j].StartTime)
	})
	return merged
}
