package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appointd",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appointd",
			Name:      "bookings_created_total",
			Help:      "Bookings created by kind.",
		},
		[]string{"kind"},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "appointd",
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appointd",
			Name:      "notifications_total",
			Help:      "Email notification attempts by recipient and outcome.",
		},
		[]string{"recipient", "outcome"},
	)

	storeReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "appointd",
			Name:      "store_reconnects_total",
			Help:      "Successful database reconnections.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, slotConflicts, notifications, storeReconnects)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated increments created bookings for a kind ("appointment" or "travel").
func IncBookingCreated(kind string) {
	bookingsCreated.WithLabelValues(kind).Inc()
}

// IncSlotConflict increments the slot conflict counter.
func IncSlotConflict() {
	slotConflicts.Inc()
}

// IncNotification records a send attempt for a recipient ("customer" or "admin").
func IncNotification(recipient, outcome string) {
	notifications.WithLabelValues(recipient, outcome).Inc()
}

// IncStoreReconnect increments the reconnect counter.
func IncStoreReconnect() {
	storeReconnects.Inc()
}
