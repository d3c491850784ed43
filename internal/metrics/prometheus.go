// Package metrics provides Prometheus metrics for the advisor pipeline and data refreshes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stage labels.
const (
	StageQuery  = "query_synthesis"
	StageExec   = "query_execution"
	StageAdvice = "advice_synthesis"
)

// Question outcome labels.
const (
	OutcomeDelivered = "delivered"
	OutcomeErrored   = "errored"
)

// Manager owns all metrics. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	questions      *prometheus.CounterVec
	stageFailures  *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	ingestRuns     *prometheus.CounterVec
	ingestPlayers  prometheus.Gauge
	ingestDuration prometheus.Histogram
}

// NewManager creates a Manager on its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fpl_advisor",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.questions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "questions_total",
		Help:      "Questions handled, by outcome",
	}, []string{"outcome"})

	m.stageFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "stage_failures_total",
		Help:      "Pipeline stage failures, by stage",
	}, []string{"stage"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "stage_duration_seconds",
		Help:      "Pipeline stage latency, by stage",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})

	m.ingestRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "runs_total",
		Help:      "Data refresh runs, by status",
	}, []string{"status"})

	m.ingestPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "players",
		Help:      "Players written by the last successful refresh",
	})

	m.ingestDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ingest",
		Name:      "duration_seconds",
		Help:      "Data refresh latency",
		Buckets:   m.histogramBuckets,
	})
}

// ObserveStage records a stage's latency and whether it failed.
func (m *Manager) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageFailures.WithLabelValues(stage).Inc()
	}
}

// ObserveQuestion counts a finished question.
func (m *Manager) ObserveQuestion(outcome string) {
	if m == nil {
		return
	}
	m.questions.WithLabelValues(outcome).Inc()
}

// ObserveIngest records a refresh run.
func (m *Manager) ObserveIngest(status string, players int, d time.Duration) {
	if m == nil {
		return
	}
	m.ingestRuns.WithLabelValues(status).Inc()
	m.ingestDuration.Observe(d.Seconds())
	if status == "ok" {
		m.ingestPlayers.Set(float64(players))
	}
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
