package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DispatcherMetrics is the worker binary's registry, tracking outbox event
// delivery.
type DispatcherMetrics struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	dispatchInFlight prometheus.Gauge
	outboxLag        *prometheus.HistogramVec

	service string
}

func NewDispatcherMetrics(service string) *DispatcherMetrics {
	registry := prometheus.NewRegistry()

	dispatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "documenso",
			Subsystem: "outbox",
			Name:      "dispatch_total",
			Help:      "Total dispatched outbox events by event type and status.",
		},
		[]string{"service", "event_type", "status"},
	)
	dispatchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "documenso",
			Subsystem: "outbox",
			Name:      "dispatch_duration_seconds",
			Help:      "Outbox event publish duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	dispatchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "documenso",
			Subsystem: "outbox",
			Name:      "dispatch_in_flight",
			Help:      "Number of in-flight outbox publishes.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	outboxLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "documenso",
			Subsystem: "outbox",
			Name:      "lag_seconds",
			Help:      "Delay between event enqueue and dispatch attempt.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(dispatchTotal, dispatchDuration, dispatchInFlight, outboxLag)

	return &DispatcherMetrics{
		registry:         registry,
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		dispatchInFlight: dispatchInFlight,
		outboxLag:        outboxLag,
		service:          service,
	}
}

func (m *DispatcherMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *DispatcherMetrics) StartEvent() {
	m.dispatchInFlight.Inc()
}

func (m *DispatcherMetrics) FinishEvent(eventType string, duration time.Duration, err error) {
	m.dispatchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.dispatchTotal.WithLabelValues(m.service, eventType, status).Inc()
	m.dispatchDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *DispatcherMetrics) ObserveOutboxLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.outboxLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
