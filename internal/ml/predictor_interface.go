// Package ml trains and applies the venture outcome classifier. It holds the
// label encoder, an in-process random forest, the staged training pipeline,
// the predictor that reads persisted artifact pairs, and an HTTP model server.
package ml

import "vcstatus/internal/storage"

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	MLPredictionsInc()
	MLFailuresInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
}

// TrainingMetrics defines metrics methods needed by the trainer
type TrainingMetrics interface {
	TrainingRunsInc()
	TrainingFailuresInc()
	TrainingDurationObserve(float64)
	TrainingRowsSet(float64)
	RowsCleanedAdd(float64)
	RowsDroppedAdd(float64)
	RowsFilteredAdd(float64)
}

// ArtifactReader loads the current model/encoder pair.
type ArtifactReader interface {
	LoadArtifactPair() (storage.ArtifactPair, error)
	Location() string
}

// ArtifactWriter replaces the current model/encoder pair.
type ArtifactWriter interface {
	SaveArtifactPair(storage.ArtifactPair) error
	Location() string
}
