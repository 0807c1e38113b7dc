package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vadapro/analyzer/pkg/config"
)

// Histogram buckets tuned for generative-AI calls.
var (
	// latencyBuckets span 100ms to 60s, the provider timeout.
	latencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60}

	// queueWaitBuckets span a fraction of a drain interval to the max wait.
	queueWaitBuckets = []float64{0.5, 1, 5, 10, 20, 30, 60, 90}
)

// Collector owns the gateway's Prometheus metrics.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	// Admission
	admissions       *prometheus.CounterVec
	tokensThisMinute prometheus.Gauge
	requestsToday    prometheus.Gauge

	// Queue
	queueDepth    prometheus.Gauge
	queueWait     prometheus.Histogram
	queueOutcomes *prometheus.CounterVec

	// Provider
	providerLatency *prometheus.HistogramVec
	tokens          *prometheus.CounterVec
	errors          *prometheus.CounterVec

	// HTTP
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil, a new private registry is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		enabled:  cfg.IsEnabled(),
		registry: registry,

		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "decisions_total",
			Help:      "Rate limiter decisions by outcome (allowed, queued, rejected) and reason",
		}, []string{"outcome", "reason"}),
		tokensThisMinute: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "tokens_this_minute",
			Help:      "Tokens consumed in the current minute window",
		}),
		requestsToday: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "requests_today",
			Help:      "Requests admitted since local midnight",
		}),

		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Number of requests waiting in the queue",
		}),
		queueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "wait_seconds",
			Help:      "Time a request spent queued before it was resolved",
			Buckets:   queueWaitBuckets,
		}),
		queueOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "outcomes_total",
			Help:      "Queued requests by how they left the queue (executed, rejected, cancelled, full, shutdown)",
		}, []string{"outcome"}),

		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "latency_seconds",
			Help:      "Generative-AI provider call latency in seconds",
			Buckets:   latencyBuckets,
		}, []string{"model", "status"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "tokens_total",
			Help:      "Tokens reported by the provider by type (input, output)",
		}, []string{"model", "type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "errors_total",
			Help:      "Analysis failures by client-facing error type",
		}, []string{"error_type"}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   latencyBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		c.admissions, c.tokensThisMinute, c.requestsToday,
		c.queueDepth, c.queueWait, c.queueOutcomes,
		c.providerLatency, c.tokens, c.errors,
		c.httpRequests, c.httpDuration,
	)

	return c
}

// Registry returns the registry the collector's metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) active() bool {
	return c != nil && c.enabled
}

// RecordAdmission counts a limiter decision. reason is empty for allowed
// requests.
func (c *Collector) RecordAdmission(outcome, reason string) {
	if !c.active() {
		return
	}
	c.admissions.WithLabelValues(outcome, reason).Inc()
}

// SetUsage publishes the current usage window counters.
func (c *Collector) SetUsage(tokensThisMinute, requestsToday int64) {
	if !c.active() {
		return
	}
	c.tokensThisMinute.Set(float64(tokensThisMinute))
	c.requestsToday.Set(float64(requestsToday))
}

// SetQueueDepth publishes the number of queued requests.
func (c *Collector) SetQueueDepth(depth int) {
	if !c.active() {
		return
	}
	c.queueDepth.Set(float64(depth))
}

// RecordQueueExit records how a queued request left the queue and how long
// it waited.
func (c *Collector) RecordQueueExit(outcome string, waited time.Duration) {
	if !c.active() {
		return
	}
	c.queueOutcomes.WithLabelValues(outcome).Inc()
	if waited > 0 {
		c.queueWait.Observe(waited.Seconds())
	}
}

// RecordProviderCall records the latency and token usage of one provider call.
// status is "success" or "error".
func (c *Collector) RecordProviderCall(model, status string, latency time.Duration, inputTokens, outputTokens int) {
	if !c.active() {
		return
	}
	c.providerLatency.WithLabelValues(model, status).Observe(latency.Seconds())
	if inputTokens > 0 {
		c.tokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		c.tokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

// RecordError counts a failure by its client-facing error type.
func (c *Collector) RecordError(errorType string) {
	if !c.active() {
		return
	}
	c.errors.WithLabelValues(errorType).Inc()
}

// RecordHTTPRequest records a completed HTTP request.
func (c *Collector) RecordHTTPRequest(route, method, status string, duration time.Duration) {
	if !c.active() {
		return
	}
	c.httpRequests.WithLabelValues(route, method, status).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}
