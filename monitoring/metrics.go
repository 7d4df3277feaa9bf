package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	availabilityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "availability_checks_total",
			Help: "Availability decisions by outcome",
		},
		[]string{"source", "result"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_status_transitions_total",
			Help: "Booking status changes by target status",
		},
		[]string{"from", "to"},
	)

	bookingWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_write_duration_seconds",
			Help:    "Duration of transactional check-and-write operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	expiredPending = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_pending_expired_total",
			Help: "Pending bookings cancelled because their window had started",
		},
	)
)

// RecordAvailability counts one decision. source is "preview", "create" or "reschedule";
// result is "available", "conflict" or "invalid".
func RecordAvailability(source, result string) {
	availabilityChecks.WithLabelValues(source, result).Inc()
}

func RecordTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

// ObserveWrite records how long a transactional booking write took since start.
func ObserveWrite(operation string, start time.Time) {
	bookingWriteDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func RecordExpired(n int) {
	expiredPending.Add(float64(n))
}
