package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boardeasy",
			Name:      "api_requests_total",
			Help:      "Backend API calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "boardeasy",
			Name:      "api_request_duration_seconds",
			Help:      "Backend API call latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	screenViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boardeasy",
			Name:      "screen_views_total",
			Help:      "Bot screens shown to users.",
		},
		[]string{"screen"},
	)

	bookingsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boardeasy",
			Name:      "bookings_submitted_total",
			Help:      "Booking submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers all collectors. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, apiDuration, screenViews, bookingsSubmitted)
	})
}

// ObserveAPI records one backend call.
func ObserveAPI(endpoint, outcome string, seconds float64) {
	apiRequests.WithLabelValues(endpoint, outcome).Inc()
	apiDuration.WithLabelValues(endpoint).Observe(seconds)
}

// IncScreen counts a rendered bot screen.
func IncScreen(screen string) {
	screenViews.WithLabelValues(screen).Inc()
}

// IncBooking counts a booking submission outcome ("ok" or "error").
func IncBooking(outcome string) {
	bookingsSubmitted.WithLabelValues(outcome).Inc()
}
