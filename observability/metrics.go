package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for huddle. Each Metrics owns its
// registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	requestActive     prometheus.Gauge
	operationTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorTotal        *prometheus.CounterVec
	subscribers       *prometheus.GaugeVec
	tasks             *prometheus.CounterVec
	queueDepth        prometheus.Gauge
	audioBytes        prometheus.Counter
}

// NewMetrics creates and registers the collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_requests_active",
			Help: "Number of in-flight HTTP requests.",
		}),
		operationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operations_total",
			Help: "Total number of provider and pipeline operations.",
		}, []string{"component", "operation", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds",
			Help:    "Duration of provider and pipeline operations in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"component", "operation"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "errors_total",
			Help: "Total errors by code and component.",
		}, []string{"code", "component"}),
		subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "session_subscribers",
			Help: "Connected subscribers by channel kind.",
		}, []string{"kind"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_total",
			Help: "Background tasks by name and final status.",
		}, []string{"name", "status"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "task_queue_depth",
			Help: "Tasks waiting for a worker.",
		}),
		audioBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "audio_bytes_received_total",
			Help: "Audio bytes accepted from clients.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal, m.requestDuration, m.requestActive,
		m.operationTotal, m.operationDuration, m.errorTotal,
		m.subscribers, m.tasks, m.queueDepth, m.audioBytes,
	)
	return m
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordRequestStart increments the in-flight request gauge.
func (m *Metrics) RecordRequestStart() {
	if m == nil {
		return
	}
	m.requestActive.Inc()
}

// RecordRequestEnd decrements in-flight requests and records the completed request.
func (m *Metrics) RecordRequestEnd(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Dec()
	m.requestTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOperation records a provider or pipeline operation.
func (m *Metrics) RecordOperation(component, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTotal.WithLabelValues(component, operation, status).Inc()
	m.operationDuration.WithLabelValues(component, operation).Observe(duration.Seconds())
}

// RecordError counts an error by code and component.
func (m *Metrics) RecordError(code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(code, component).Inc()
}

// SubscriberAdded increments the subscriber gauge for kind.
func (m *Metrics) SubscriberAdded(kind string) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(kind).Inc()
}

// SubscriberRemoved decrements the subscriber gauge for kind.
func (m *Metrics) SubscriberRemoved(kind string) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(kind).Dec()
}

// RecordTask counts a finished background task.
func (m *Metrics) RecordTask(name, status string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(name, status).Inc()
}

// SetQueueDepth reports how many tasks wait for a worker.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// AddAudioBytes counts accepted audio bytes.
func (m *Metrics) AddAudioBytes(n int) {
	if m == nil {
		return
	}
	m.audioBytes.Add(float64(n))
}
