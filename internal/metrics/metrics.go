// Package metrics provides Prometheus metrics collection for the outcome
// classifier. It covers the cleaning and training pipeline as well as
// prediction serving.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Dataset metrics
	RowsCleaned  prometheus.Counter // Rows that survived cleaning
	RowsDropped  prometheus.Counter // Rows discarded for a null status
	RowsFiltered prometheus.Counter // Rows excluded for a non-binary status

	// Training metrics
	TrainingRuns     prometheus.Counter   // Training runs started
	TrainingFailures prometheus.Counter   // Training runs that returned an error
	TrainingDuration prometheus.Histogram // Wall time of a training run in seconds
	TrainingRows     prometheus.Gauge     // Size of the last training partition

	// Prediction metrics
	MLPredictions prometheus.Counter   // Total number of predictions made
	MLFailures    prometheus.Counter   // Total number of prediction failures
	MLLatency     prometheus.Histogram // Prediction latency in seconds, artifact read included
	MLModelAge    prometheus.Gauge     // Age of the artifact pair used last, in seconds
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RowsCleaned: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataset_rows_cleaned_total",
			Help: "Total number of rows that survived cleaning",
		}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataset_rows_dropped_total",
			Help: "Total number of rows discarded for a missing status",
		}),
		RowsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "dataset_rows_filtered_total",
			Help: "Total number of rows excluded for a status other than operating or closed",
		}),
		TrainingRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Total number of training runs started",
		}),
		TrainingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "training_failures_total",
			Help: "Total number of failed training runs",
		}),
		TrainingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		TrainingRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "training_rows",
			Help: "Number of rows in the last training partition",
		}),
		MLPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of ML predictions made",
		}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_failures_total",
			Help: "Total number of ML prediction failures",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_latency_seconds",
			Help:    "ML prediction latency in seconds (end-to-end)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		MLModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_age_seconds",
			Help: "Age of the current artifact pair in seconds",
		}),
	}
}
