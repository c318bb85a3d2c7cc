package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConverseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donna_converse_total",
			Help: "Total number of converse turns by intent kind",
		},
		[]string{"kind"},
	)

	ConverseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "donna_converse_duration_seconds",
			Help: "Duration of converse turns in seconds",
		},
		[]string{"kind"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donna_upstream_errors_total",
			Help: "Total number of upstream service failures",
		},
		[]string{"service"},
	)

	CalendarFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donna_calendar_fetch_failures_total",
			Help: "Total number of per-calendar fetches swallowed during fan-out",
		},
	)
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
