package ml

import (
	"errors"
	"fmt"
)

// ErrNoTrainingRows is wrapped by TrainingDataError when a stage is left
// without rows to learn from.
var ErrNoTrainingRows = errors.New("no usable training rows")

// TrainingDataError reports a training run that ran out of rows.
type TrainingDataError struct {
	Path  string
	Stage string // stage that came up empty: "filter" or "split"
	Rows  int    // rows that reached the stage
}

func (e *TrainingDataError) Error() string {
	return fmt.Sprintf("training data %s: stage %s left %d rows: %v", e.Path, e.Stage, e.Rows, ErrNoTrainingRows)
}

func (e *TrainingDataError) Unwrap() error { return ErrNoTrainingRows }

// ArtifactNotFoundError is returned at prediction time when the persisted
// model and encoder are absent or do not belong to the same training run.
type ArtifactNotFoundError struct {
	Location string
	Reason   string
	Err      error
}

func (e *ArtifactNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifacts at %s: %s: %v", e.Location, e.Reason, e.Err)
	}
	return fmt.Sprintf("artifacts at %s: %s", e.Location, e.Reason)
}

func (e *ArtifactNotFoundError) Unwrap() error { return e.Err }

// UnknownCodeError is returned when decoding a code the encoder never produced.
type UnknownCodeError struct {
	Code  int
	FitID string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("label code %d unknown to encoder %s", e.Code, e.FitID)
}

// UnknownLabelError is returned when encoding a label outside the fitted classes.
type UnknownLabelError struct {
	Label string
	FitID string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("label %q unknown to encoder %s", e.Label, e.FitID)
}
