package server

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeDisconnect = "disconnect"
)

var (
	registerOnce sync.Once

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "m2handler",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total requests dispatched to the handler.",
		},
		[]string{"outcome"},
	)
	malformedRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "m2handler",
			Subsystem: "server",
			Name:      "malformed_requests_total",
			Help:      "Requests dropped because they could not be decoded.",
		},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "m2handler",
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Time spent in the handler per request.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	activeWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "m2handler",
			Subsystem: "server",
			Name:      "workers",
			Help:      "Workers currently serving requests.",
		},
	)
)

// RegisterMetrics registers the server metrics with the default registry.
// It is safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requests, malformedRequests, requestDuration, activeWorkers)
	})
}

func recordRequest(outcome string, duration time.Duration) {
	requests.WithLabelValues(outcome).Inc()
	requestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
