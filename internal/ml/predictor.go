package ml

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"vcstatus/internal/common"
	"vcstatus/internal/features"
	"vcstatus/internal/storage"

	"github.com/rs/zerolog/log"
)

// Predictor classifies single records with the persisted artifact pair.
// The pair is read on every call so a retrained pair is picked up at once.
type Predictor struct {
	store   ArtifactReader
	metrics MetricsInterface
}

// Prediction is a decoded label together with the run that produced it.
type Prediction struct {
	Status string
	FitID  string
	Code   int
}

func NewPredictor(store ArtifactReader, metrics MetricsInterface) *Predictor {
	return &Predictor{store: store, metrics: metrics}
}

// Predict returns "operating" or "closed" for the four feature values in
// input. Missing, null or unparsable features count as 0 and unknown keys
// are ignored.
func (p *Predictor) Predict(input map[string]any) (string, error) {
	res, err := p.PredictDetailed(input)
	if err != nil {
		return "", err
	}
	return res.Status, nil
}

// PredictDetailed is Predict with the fit id and raw code of the decision.
func (p *Predictor) PredictDetailed(input map[string]any) (Prediction, error) {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.MLPredictionsInc()
	}

	res, err := p.predict(input)
	if err != nil {
		if p.metrics != nil {
			p.metrics.MLFailuresInc()
		}
		return Prediction{}, err
	}

	if p.metrics != nil {
		p.metrics.MLLatencyObserve(time.Since(start).Seconds())
	}
	return res, nil
}

func (p *Predictor) predict(input map[string]any) (Prediction, error) {
	model, encoder, info, err := p.load()
	if err != nil {
		return Prediction{}, err
	}
	if p.metrics != nil && !info.CreatedAt.IsZero() {
		p.metrics.MLModelAgeSet(time.Since(info.CreatedAt).Seconds())
	}

	v := VectorFromInput(input)
	code, err := model.PredictCode(v)
	if err != nil {
		return Prediction{}, &ArtifactNotFoundError{Location: p.store.Location(), Reason: "model cannot score input", Err: err}
	}

	labels, err := encoder.InverseTransform([]int{code})
	if err != nil {
		return Prediction{}, err
	}

	log.Debug().
		Str("fit_id", model.FitID).
		Floats64("features", v[:]).
		Str("status", labels[0]).
		Msg("Prediction made")

	return Prediction{Status: labels[0], FitID: model.FitID, Code: code}, nil
}

// load reads and decodes the current pair, rejecting halves from different runs.
func (p *Predictor) load() (*Model, *LabelEncoder, storage.ArtifactInfo, error) {
	var info storage.ArtifactInfo
	if p == nil || p.store == nil {
		return nil, nil, info, &ArtifactNotFoundError{Reason: "no artifact store configured"}
	}
	location := p.store.Location()

	pair, err := p.store.LoadArtifactPair()
	if err != nil {
		reason := "artifact pair unreadable"
		switch {
		case errors.Is(err, storage.ErrArtifactNotFound):
			reason = "no trained model and encoder"
		case errors.Is(err, storage.ErrArtifactMismatch):
			reason = "model and encoder are not a matching pair"
		}
		return nil, nil, info, &ArtifactNotFoundError{Location: location, Reason: reason, Err: err}
	}

	model, err := UnmarshalModel(pair.Model)
	if err != nil {
		return nil, nil, info, &ArtifactNotFoundError{Location: location, Reason: "model artifact is corrupt", Err: err}
	}
	encoder, err := UnmarshalEncoder(pair.Encoder)
	if err != nil {
		return nil, nil, info, &ArtifactNotFoundError{Location: location, Reason: "encoder artifact is corrupt", Err: err}
	}
	if model.FitID == "" || model.FitID != encoder.FitID {
		return nil, nil, info, &ArtifactNotFoundError{
			Location: location,
			Reason:   "model fit " + model.FitID + " does not match encoder fit " + encoder.FitID,
			Err:      storage.ErrArtifactMismatch,
		}
	}
	if model.Forest.NClasses != encoder.NumClasses() {
		return nil, nil, info, &ArtifactNotFoundError{
			Location: location,
			Reason:   "model and encoder disagree on class count",
			Err:      storage.ErrArtifactMismatch,
		}
	}

	return model, encoder, pair.Info, nil
}

// Info returns metadata of the current artifact pair.
func (p *Predictor) Info() (storage.ArtifactInfo, error) {
	_, _, info, err := p.load()
	return info, err
}

// VectorFromInput builds the model input from a loosely typed mapping.
func VectorFromInput(input map[string]any) features.Vector {
	values := make(map[string]float64, len(common.FeatureNames))
	for _, name := range common.FeatureNames {
		values[name] = coerceFeature(input[name])
	}
	return features.FromMap(values)
}

func coerceFeature(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(x, ",", "")), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
