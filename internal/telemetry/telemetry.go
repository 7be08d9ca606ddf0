// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for civic complaint analysis.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "civic-classifier"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeFailure  = "failure"
)

// Metrics holds all civic classifier Prometheus metrics.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	ProblemsTotal     *prometheus.CounterVec
	PrioritiesTotal   *prometheus.CounterVec
	RuleMatchDuration prometheus.Histogram

	CollaboratorCalls    *prometheus.CounterVec
	CollaboratorDuration *prometheus.HistogramVec
	ThrottleCount        *prometheus.CounterVec
	BreakerRejections    *prometheus.CounterVec

	ActiveWorkers prometheus.Gauge
	BatchSize     prometheus.Histogram
}

// Provider bundles the tracer with a private metrics registry.
// All methods are no-ops on a nil Provider.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers a fresh metric set on its own registry.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	return &Provider{
		Tracer:   otel.Tracer(tracerName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

func initMetrics(f promauto.Factory) *Metrics {
	m := &Metrics{}
	initAnalysisMetrics(f, m)
	initCollaboratorMetrics(f, m)
	initBatchMetrics(f, m)
	return m
}

func initAnalysisMetrics(f promauto.Factory, m *Metrics) {
	m.AnalysesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "civic_analyses_total",
		Help: "Complaint analyses by outcome (success, fallback)",
	}, []string{"outcome"})

	m.AnalysisDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "civic_analysis_duration_seconds",
		Help:    "End-to-end time to analyze one complaint",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	m.ProblemsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "civic_problems_total",
		Help: "Classified complaints by category code",
	}, []string{"category"})

	m.PrioritiesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "civic_priorities_total",
		Help: "Classified complaints by priority",
	}, []string{"priority"})

	m.RuleMatchDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "civic_rule_match_duration_seconds",
		Help:    "Time spent in keyword matching (Aho-Corasick)",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})
}

func initCollaboratorMetrics(f promauto.Factory, m *Metrics) {
	m.CollaboratorCalls = f.NewCounterVec(prometheus.CounterOpts{
		Name: "civic_collaborator_calls_total",
		Help: "Captioning and transcription calls by outcome",
	}, []string{"collaborator", "outcome"})

	m.CollaboratorDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "civic_collaborator_duration_seconds",
		Help:    "Captioning and transcription call latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"collaborator"})

	m.ThrottleCount = f.NewCounterVec(prometheus.CounterOpts{
		Name: "civic_collaborator_throttled_total",
		Help: "Calls delayed by the collaborator rate limiter",
	}, []string{"collaborator"})

	m.BreakerRejections = f.NewCounterVec(prometheus.CounterOpts{
		Name: "civic_collaborator_breaker_rejections_total",
		Help: "Calls rejected by an open circuit breaker",
	}, []string{"collaborator"})
}

func initBatchMetrics(f promauto.Factory, m *Metrics) {
	m.ActiveWorkers = f.NewGauge(prometheus.GaugeOpts{
		Name: "civic_batch_active_workers",
		Help: "Batch workers currently analyzing a complaint",
	})

	m.BatchSize = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "civic_batch_size",
		Help:    "Complaints per batch run",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
	})
}

// RecordAnalysis records one finished analysis.
func (p *Provider) RecordAnalysis(outcome string, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	p.Metrics.AnalysisDuration.Observe(duration.Seconds())
}

// RecordClassification counts the category code and priority of a result.
func (p *Provider) RecordClassification(categoryCode, priority string) {
	if p == nil {
		return
	}
	p.Metrics.ProblemsTotal.WithLabelValues(categoryCode).Inc()
	p.Metrics.PrioritiesTotal.WithLabelValues(priority).Inc()
}

// RecordRuleMatch records keyword matching latency.
func (p *Provider) RecordRuleMatch(duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.RuleMatchDuration.Observe(duration.Seconds())
}

// RecordCollaboratorCall records a captioning or transcription call.
func (p *Provider) RecordCollaboratorCall(collaborator string, err error, duration time.Duration) {
	if p == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	p.Metrics.CollaboratorCalls.WithLabelValues(collaborator, outcome).Inc()
	p.Metrics.CollaboratorDuration.WithLabelValues(collaborator).Observe(duration.Seconds())
}

// IncrementThrottleCount counts a call delayed by the rate limiter.
func (p *Provider) IncrementThrottleCount(collaborator string) {
	if p == nil {
		return
	}
	p.Metrics.ThrottleCount.WithLabelValues(collaborator).Inc()
}

// IncrementBreakerRejections counts a call refused by an open breaker.
func (p *Provider) IncrementBreakerRejections(collaborator string) {
	if p == nil {
		return
	}
	p.Metrics.BreakerRejections.WithLabelValues(collaborator).Inc()
}

// SetActiveWorkers sets the number of busy batch workers.
func (p *Provider) SetActiveWorkers(count int) {
	if p == nil {
		return
	}
	p.Metrics.ActiveWorkers.Set(float64(count))
}

// RecordBatchSize records the size of a batch run.
func (p *Provider) RecordBatchSize(size int) {
	if p == nil {
		return
	}
	p.Metrics.BatchSize.Observe(float64(size))
}

// Gatherer exposes the registry for export and tests.
func (p *Provider) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
func (p *Provider) WriteTextfile(path string) error {
	if p == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// StartSpan starts a span. The caller must end it.
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
