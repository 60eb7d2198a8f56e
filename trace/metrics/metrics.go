// Package metrics provides a trace.Handler that exports Prometheus metrics
// for strategy runs, LLM calls, action executions and strategy events.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/planlib/trace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Namespace is the metric name prefix. Default is "planlib".
	Namespace string

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Namespace:      "planlib",
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// Exporter implements trace.Handler by updating Prometheus collectors.
type Exporter struct {
	registry *prometheus.Registry

	strategyRuns    *prometheus.CounterVec
	strategyLatency *prometheus.HistogramVec

	llmCalls   *prometheus.CounterVec
	llmTokens  *prometheus.CounterVec
	llmLatency prometheus.Histogram

	toolCalls   *prometheus.CounterVec
	toolLatency *prometheus.HistogramVec

	subTasks *prometheus.CounterVec
	events   *prometheus.CounterVec
}

// New creates an Exporter and registers its collectors.
func New(cfg Config) *Exporter {
	def := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = def.LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{
		registry: registry,

		strategyRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "strategy",
			Name:      "runs_total",
			Help:      "Total number of strategy runs",
		}, []string{"strategy", "status"}),
		strategyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "strategy",
			Name:      "duration_seconds",
			Help:      "Duration of strategy runs",
			Buckets:   cfg.LatencyBuckets,
		}, []string{"strategy"}),

		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total number of LLM calls",
		}, []string{"status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Total number of LLM tokens",
		}, []string{"type"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "llm",
			Name:      "duration_seconds",
			Help:      "Duration of LLM calls",
			Buckets:   cfg.LatencyBuckets,
		}),

		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "action",
			Name:      "executions_total",
			Help:      "Total number of executed actions",
		}, []string{"tool", "status"}),
		toolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "action",
			Name:      "duration_seconds",
			Help:      "Duration of action executions",
			Buckets:   cfg.LatencyBuckets,
		}, []string{"tool"}),

		subTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "strategy",
			Name:      "sub_tasks_total",
			Help:      "Total number of nested sub-tasks",
		}, []string{"status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "strategy",
			Name:      "events_total",
			Help:      "Total number of strategy events by kind",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		e.strategyRuns, e.strategyLatency,
		e.llmCalls, e.llmTokens, e.llmLatency,
		e.toolCalls, e.toolLatency,
		e.subTasks, e.events,
	)

	return e
}

// Registry returns the registry holding the exporter's collectors.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns an HTTP handler serving the metrics.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

type spanKey struct{}

type spanInfo struct {
	name    string
	started time.Time
}

func withSpan(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, spanKey{}, spanInfo{name: name, started: time.Now()})
}

func spanFrom(ctx context.Context) spanInfo {
	info, _ := ctx.Value(spanKey{}).(spanInfo)
	return info
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (e *Exporter) StartStrategy(ctx context.Context, name string) context.Context {
	return withSpan(ctx, name)
}

func (e *Exporter) EndStrategy(ctx context.Context, err error) {
	info := spanFrom(ctx)
	e.strategyRuns.WithLabelValues(info.name, status(err)).Inc()
	e.strategyLatency.WithLabelValues(info.name).Observe(time.Since(info.started).Seconds())
}

func (e *Exporter) StartLLMCall(ctx context.Context) context.Context {
	return withSpan(ctx, "llm")
}

func (e *Exporter) EndLLMCall(ctx context.Context, data *trace.LLMCallData, err error) {
	e.llmCalls.WithLabelValues(status(err)).Inc()
	e.llmLatency.Observe(time.Since(spanFrom(ctx).started).Seconds())
	if data != nil {
		e.llmTokens.WithLabelValues("input").Add(float64(data.InputTokens))
		e.llmTokens.WithLabelValues("output").Add(float64(data.OutputTokens))
	}
}

func (e *Exporter) StartToolExec(ctx context.Context, toolName string, _ map[string]any) context.Context {
	return withSpan(ctx, toolName)
}

func (e *Exporter) EndToolExec(ctx context.Context, _ any, err error) {
	info := spanFrom(ctx)
	e.toolCalls.WithLabelValues(info.name, status(err)).Inc()
	e.toolLatency.WithLabelValues(info.name).Observe(time.Since(info.started).Seconds())
}

func (e *Exporter) StartSubTask(ctx context.Context, name string) context.Context {
	return withSpan(ctx, name)
}

func (e *Exporter) EndSubTask(_ context.Context, err error) {
	e.subTasks.WithLabelValues(status(err)).Inc()
}

func (e *Exporter) AddEvent(_ context.Context, kind string, _ any) {
	e.events.WithLabelValues(kind).Inc()
}

func (e *Exporter) Finish(_ context.Context) error {
	return nil
}

var _ trace.Handler = (*Exporter)(nil)
