package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics is the API binary's registry: request-level metrics plus
// signing-domain counters.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	fieldMutationsTotal *prometheus.CounterVec
	autoSignedTotal     *prometheus.CounterVec
	completionsTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "documenso",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "documenso",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "documenso",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	fieldMutationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "documenso",
			Subsystem: "signing",
			Name:      "field_mutations_total",
			Help:      "Total field insert/remove operations by field type and outcome.",
		},
		[]string{"service", "operation", "field_type", "outcome"},
	)
	autoSignedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "documenso",
			Subsystem: "signing",
			Name:      "auto_signed_fields_total",
			Help:      "Total date fields filled by the auto-sign pass.",
		},
		[]string{"service"},
	)
	completionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "documenso",
			Subsystem: "signing",
			Name:      "completions_total",
			Help:      "Total recipient completion attempts by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		fieldMutationsTotal, autoSignedTotal, completionsTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		fieldMutationsTotal: fieldMutationsTotal,
		autoSignedTotal:     autoSignedTotal,
		completionsTotal:    completionsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) ObserveRequest(service, method, path string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) StartRequest() {
	m.requestInFlight.Inc()
}

func (m *HTTPServerMetrics) FinishRequest() {
	m.requestInFlight.Dec()
}

func (m *HTTPServerMetrics) ObserveFieldMutation(service, operation, fieldType string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.fieldMutationsTotal.WithLabelValues(service, operation, fieldType, outcome).Inc()
}

func (m *HTTPServerMetrics) AddAutoSignedFields(service string, count int) {
	if count <= 0 {
		return
	}
	m.autoSignedTotal.WithLabelValues(service).Add(float64(count))
}

func (m *HTTPServerMetrics) ObserveCompletion(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.completionsTotal.WithLabelValues(service, outcome).Inc()
}
