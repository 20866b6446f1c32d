package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIMetrics instruments the caller-facing HTTP surface plus the engine
// counters behind it.
type APIMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	evaluationsTotal  *prometheus.CounterVec
	rankedCandidates  *prometheus.HistogramVec
	relevanceFallback *prometheus.CounterVec
	transitionsTotal  *prometheus.CounterVec
}

func NewAPIMetrics(service string) *APIMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "yse",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	evaluationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yse",
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Eligibility evaluations by aggregate outcome.",
		},
		[]string{"service", "outcome"},
	)
	rankedCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yse",
			Subsystem: "engine",
			Name:      "ranked_candidates",
			Help:      "Candidate set size per discovery request.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"service"},
	)
	relevanceFallback := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yse",
			Subsystem: "engine",
			Name:      "relevance_fallback_total",
			Help:      "Discovery requests that degraded to fallback relevance.",
		},
		[]string{"service"},
	)
	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yse",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Application lifecycle transitions by target status and result.",
		},
		[]string{"service", "status", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		evaluationsTotal,
		rankedCandidates,
		relevanceFallback,
		transitionsTotal,
	)

	return &APIMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		evaluationsTotal:  evaluationsTotal,
		rankedCandidates:  rankedCandidates,
		relevanceFallback: relevanceFallback,
		transitionsTotal:  transitionsTotal,
	}
}

func (m *APIMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *APIMetrics) ObserveRequest(service, method, path string, status int, elapsed time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(elapsed.Seconds())
}

func (m *APIMetrics) RequestStarted()  { m.requestInFlight.Inc() }
func (m *APIMetrics) RequestFinished() { m.requestInFlight.Dec() }

func (m *APIMetrics) ObserveEvaluation(service, outcome string) {
	m.evaluationsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *APIMetrics) ObserveDiscovery(service string, candidates int) {
	m.rankedCandidates.WithLabelValues(service).Observe(float64(candidates))
}

func (m *APIMetrics) ObserveRelevanceFallback(service string) {
	m.relevanceFallback.WithLabelValues(service).Inc()
}

func (m *APIMetrics) ObserveTransition(service, status, result string) {
	m.transitionsTotal.WithLabelValues(service, status, result).Inc()
}
