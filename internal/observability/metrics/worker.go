package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics instruments the lifecycle-event consumer.
type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	eventLag      *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yse",
			Subsystem: "worker",
			Name:      "application_events_total",
			Help:      "Lifecycle events consumed by status and result.",
		},
		[]string{"service", "status", "result"},
	)
	eventDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yse",
			Subsystem: "worker",
			Name:      "application_event_duration_seconds",
			Help:      "Event handling duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "result"},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yse",
			Subsystem: "worker",
			Name:      "application_event_lag_seconds",
			Help:      "Delay between a lifecycle change and its consumption.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)

	registry.MustRegister(eventsTotal, eventDuration, eventLag)

	return &WorkerMetrics{
		registry:      registry,
		eventsTotal:   eventsTotal,
		eventDuration: eventDuration,
		eventLag:      eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveEvent(service, status, result string, elapsed time.Duration) {
	m.eventsTotal.WithLabelValues(service, status, result).Inc()
	m.eventDuration.WithLabelValues(service, result).Observe(elapsed.Seconds())
}

func (m *WorkerMetrics) ObserveLag(service string, lag time.Duration) {
	if lag < 0 {
		lag = 0
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
