package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zaimka",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zaimka",
			Name:      "bookings_created_total",
			Help:      "Booking segments accepted and stored as pending.",
		},
	)

	segmentsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zaimka",
			Name:      "booking_segments_rejected_total",
			Help:      "Booking segments rejected by availability validation.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, segmentsRejected)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts an accepted booking segment.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncSegmentRejected counts a segment turned away as unavailable.
func IncSegmentRejected() {
	segmentsRejected.Inc()
}
