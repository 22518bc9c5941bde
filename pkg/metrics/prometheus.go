package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles    *prometheus.CounterVec
	cycleTime prometheus.Histogram
	errorsTot *prometheus.CounterVec
	score     *prometheus.GaugeVec
	aggregate prometheus.Gauge
	latency   *prometheus.HistogramVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_cycles_total",
				Help: "Evaluation cycles by outcome",
			},
			[]string{"status"},
		),
		cycleTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coinpulse_cycle_duration_seconds",
				Help:    "Duration of evaluation cycles",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		errorsTot: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		score: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_signal_score",
				Help: "Latest blended signal score per symbol",
			},
			[]string{"symbol"},
		),
		aggregate: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinpulse_aggregate_score",
				Help: "Latest aggregate market score",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records a finished cycle.
func (r *Recorder) RecordCycle(status string, seconds float64) {
	r.cycles.WithLabelValues(status).Inc()
	r.cycleTime.Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTot.WithLabelValues(kind).Inc()
}

// RecordScore records the latest score of a symbol.
func (r *Recorder) RecordScore(symbol string, score float64) {
	r.score.WithLabelValues(symbol).Set(score)
}

// RecordAggregate records the latest aggregate score.
func (r *Recorder) RecordAggregate(score float64) {
	r.aggregate.Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
