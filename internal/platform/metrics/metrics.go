package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsAccepted prometheus.Counter
	ValidationFailures    prometheus.Counter
	StorageFailures       prometheus.Counter
	BroadcastsSent        prometheus.Counter
	BroadcastsDropped     prometheus.Counter
	DashboardSubscribers  prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_registrations_accepted_total",
			Help: "Total number of registrations accepted and persisted",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_validation_failures_total",
			Help: "Total number of submissions rejected by validation",
		}),
		StorageFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_storage_failures_total",
			Help: "Total number of failed durable writes",
		}),
		BroadcastsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_broadcasts_sent_total",
			Help: "Total number of records delivered to connected subscribers",
		}),
		BroadcastsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_broadcasts_dropped_total",
			Help: "Total number of records dropped for slow subscribers",
		}),
		DashboardSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rollcall_dashboard_subscribers",
			Help: "Number of currently connected dashboard subscribers",
		}),
	}
}
