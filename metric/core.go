package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not component-specific)
type Metrics struct {
	// Request metrics
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec
	HealthCheckStatus *prometheus.GaugeVec

	// Classification metrics
	ClassificationRuns    *prometheus.CounterVec
	AssignmentsWritten    prometheus.Counter
	ItemsSkipped          prometheus.Counter
	SimilarityEvaluations prometheus.Counter

	// Compilation metrics
	CompileTotal *prometheus.CounterVec

	// External call metrics
	CompletionCalls  *prometheus.CounterVec
	EmbeddingCalls   *prometheus.CounterVec
	ExternalCallTime *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "semquery",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by kind",
			},
			[]string{"component", "kind"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "semquery",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"component"},
		),

		ClassificationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "classifier",
				Name:      "runs_total",
				Help:      "Total number of classification runs",
			},
			[]string{"status"},
		),

		AssignmentsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "classifier",
				Name:      "assignments_written_total",
				Help:      "Total number of assignments written by runs",
			},
		),

		ItemsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "classifier",
				Name:      "items_skipped_total",
				Help:      "Total number of items skipped due to ineligible input",
			},
		),

		SimilarityEvaluations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "classifier",
				Name:      "similarity_evaluations_total",
				Help:      "Total number of item-category similarity evaluations",
			},
		),

		CompileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "compiler",
				Name:      "compile_total",
				Help:      "Total number of template compilations",
			},
			[]string{"branch", "status"},
		),

		CompletionCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "llm",
				Name:      "completion_calls_total",
				Help:      "Total number of LM completion calls",
			},
			[]string{"purpose", "status"},
		),

		EmbeddingCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semquery",
				Subsystem: "oracle",
				Name:      "embedding_calls_total",
				Help:      "Total number of embedding API calls",
			},
			[]string{"status"},
		),

		ExternalCallTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "semquery",
				Subsystem: "external",
				Name:      "call_duration_seconds",
				Help:      "Duration of external service calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service"},
		),
	}
}

// RecordRequest increments the request counter and observes its duration
func (c *Metrics) RecordRequest(route, status string, duration time.Duration) {
	c.RequestsTotal.WithLabelValues(route, status).Inc()
	c.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordError increments error counter by component and kind
func (c *Metrics) RecordError(component, kind string) {
	c.ErrorsTotal.WithLabelValues(component, kind).Inc()
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(component).Set(value)
}

// RecordClassificationRun records a completed run and its outputs
func (c *Metrics) RecordClassificationRun(status string, assignments, skipped int) {
	c.ClassificationRuns.WithLabelValues(status).Inc()
	c.AssignmentsWritten.Add(float64(assignments))
	c.ItemsSkipped.Add(float64(skipped))
}

// RecordSimilarityEvaluations adds to the similarity evaluation counter
func (c *Metrics) RecordSimilarityEvaluations(n int) {
	c.SimilarityEvaluations.Add(float64(n))
}

// RecordCompile increments compilation counter for a branch
func (c *Metrics) RecordCompile(branch, status string) {
	c.CompileTotal.WithLabelValues(branch, status).Inc()
}

// RecordCompletionCall increments the LM completion counter
func (c *Metrics) RecordCompletionCall(purpose, status string, duration time.Duration) {
	c.CompletionCalls.WithLabelValues(purpose, status).Inc()
	c.ExternalCallTime.WithLabelValues("llm").Observe(duration.Seconds())
}

// RecordEmbeddingCall increments the embedding counter
func (c *Metrics) RecordEmbeddingCall(status string, duration time.Duration) {
	c.EmbeddingCalls.WithLabelValues(status).Inc()
	c.ExternalCallTime.WithLabelValues("oracle").Observe(duration.Seconds())
}
