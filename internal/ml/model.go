package ml

import (
	"encoding/json"
	"fmt"
	"time"

	"vcstatus/internal/features"
)

// Model is a fitted forest tagged with the fit id it shares with its encoder.
type Model struct {
	FitID     string        `json:"fit_id"`
	Features  []string      `json:"features"`
	TrainedAt time.Time     `json:"trained_at"`
	Forest    *RandomForest `json:"forest"`
}

// PredictCode classifies one feature vector into a label code.
func (m *Model) PredictCode(v features.Vector) (int, error) {
	if m == nil || m.Forest == nil {
		return 0, fmt.Errorf("model is not fitted")
	}
	return m.Forest.Predict(v[:])
}

func MarshalModel(m *Model) ([]byte, error) {
	return json.Marshal(m)
}

func UnmarshalModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Forest == nil || len(m.Forest.Trees) == 0 {
		return nil, fmt.Errorf("decode model: no trees")
	}
	return &m, nil
}
