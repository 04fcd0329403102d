// Package telemetry exposes pipeline run metrics to Prometheus.
package telemetry

import (
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devpulse"

// Recorder implements contract.RunObserver with Prometheus collectors.
type Recorder struct {
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	anomalies     *prometheus.CounterVec
	lastRun       *prometheus.GaugeVec
}

var _ contract.RunObserver = &Recorder{} // Compile-time check

// NewRecorder registers the run collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by time range and status",
		}, []string{"time_range", "status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Histogram of whole pipeline run durations",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"time_range"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Histogram of pipeline stage durations",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		stageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stage failures",
		}, []string{"stage"}),
		anomalies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Anomalies flagged across runs",
		}, []string{"type"}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last finished run",
		}, []string{"time_range"}),
	}
}

// ObserveStage implements the RunObserver interface.
func (r *Recorder) ObserveStage(stage schema.Stage, duration time.Duration, err error) {
	r.stageDuration.WithLabelValues(string(stage)).Observe(duration.Seconds())
	if err != nil {
		r.stageErrors.WithLabelValues(string(stage)).Inc()
	}
}

// ObserveRun implements the RunObserver interface.
func (r *Recorder) ObserveRun(state *schema.PipelineState, duration time.Duration) {
	tr := string(state.TimeRange)
	r.runs.WithLabelValues(tr, state.Status()).Inc()
	r.runDuration.WithLabelValues(tr).Observe(duration.Seconds())
	r.lastRun.WithLabelValues(tr).Set(float64(state.Timestamp.Unix()))
	for _, a := range state.Anomalies {
		r.anomalies.WithLabelValues(string(a.Type)).Inc()
	}
}
