package ml

import (
	"context"
	"fmt"
	"time"

	"vcstatus/internal/cfg"
	"vcstatus/internal/common"
	"vcstatus/internal/dataset"
	"vcstatus/internal/features"
	"vcstatus/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Trainer stages, in execution order.
const (
	StageCleaning          = "clean"
	StageFiltering         = "filter"
	StageEncoding          = "encode"
	StageFeatureExtraction = "features"
	StageSplitting         = "split"
	StageFitting           = "fit"
	StagePersisting        = "persist"
)

// trainedLabels are the only statuses the classifier learns.
var trainedLabels = map[string]bool{
	common.StatusOperating: true,
	common.StatusClosed:    true,
}

// Trainer runs the training pipeline and persists its artifact pair.
type Trainer struct {
	settings cfg.Settings
	loader   *dataset.Loader
	store    ArtifactWriter
	metrics  TrainingMetrics
	now      func() time.Time
}

func NewTrainer(settings cfg.Settings, store ArtifactWriter, metrics TrainingMetrics) *Trainer {
	return &Trainer{
		settings: settings,
		loader:   dataset.NewLoader(settings.FetchTimeout),
		store:    store,
		metrics:  metrics,
		now:      time.Now,
	}
}

// run carries the intermediates of one training run between stages.
type run struct {
	fitID    string
	path     string
	cleaned  *dataset.CanonicalTable
	filtered []dataset.CanonicalRecord
	encoder  *LabelEncoder
	codes    []int
	set      trainingSet
	parts    split
	model    *Model
}

// Train loads sourcePath, fits a model and encoder on the operating and
// closed records, and stores both as one artifact pair. An empty sourcePath
// falls back to the configured source.
func (t *Trainer) Train(ctx context.Context, sourcePath string) (*Model, *LabelEncoder, error) {
	if sourcePath == "" {
		sourcePath = t.settings.SourcePath
	}

	start := t.now()
	if t.metrics != nil {
		t.metrics.TrainingRunsInc()
	}

	r := &run{fitID: uuid.NewString(), path: sourcePath}
	stages := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{StageCleaning, t.clean},
		{StageFiltering, t.filter},
		{StageEncoding, t.encode},
		{StageFeatureExtraction, t.extract},
		{StageSplitting, t.split},
		{StageFitting, t.fit},
		{StagePersisting, t.persist},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, nil, t.fail(r, s.name, err)
		}
		log.Debug().Str("fit_id", r.fitID).Str("stage", s.name).Msg("Training stage started")
		if err := s.fn(ctx, r); err != nil {
			return nil, nil, t.fail(r, s.name, err)
		}
	}

	elapsed := t.now().Sub(start)
	if t.metrics != nil {
		t.metrics.TrainingDurationObserve(elapsed.Seconds())
		t.metrics.TrainingRowsSet(float64(r.parts.train.Len()))
	}

	log.Info().
		Str("fit_id", r.fitID).
		Str("source", r.path).
		Int("rows_cleaned", len(r.cleaned.Records)).
		Int("rows_trained", r.parts.train.Len()).
		Int("rows_holdout", r.parts.holdout.Len()).
		Strs("classes", r.encoder.Classes).
		Str("location", t.store.Location()).
		Dur("elapsed", elapsed).
		Msg("Model and label encoder trained and saved")

	return r.model, r.encoder, nil
}

func (t *Trainer) fail(r *run, stage string, err error) error {
	if t.metrics != nil {
		t.metrics.TrainingFailuresInc()
	}
	log.Error().Err(err).Str("fit_id", r.fitID).Str("stage", stage).Str("source", r.path).Msg("Training failed")
	return err
}

func (t *Trainer) clean(ctx context.Context, r *run) error {
	table, err := dataset.LoadAndClean(ctx, t.loader, r.path)
	if err != nil {
		return err
	}
	r.cleaned = table
	if t.metrics != nil {
		t.metrics.RowsCleanedAdd(float64(len(table.Records)))
		t.metrics.RowsDroppedAdd(float64(table.Dropped))
	}
	return nil
}

func (t *Trainer) filter(_ context.Context, r *run) error {
	for _, rec := range r.cleaned.Records {
		if trainedLabels[rec.Status] {
			r.filtered = append(r.filtered, rec)
		}
	}

	removed := len(r.cleaned.Records) - len(r.filtered)
	if t.metrics != nil {
		t.metrics.RowsFilteredAdd(float64(removed))
	}
	log.Info().
		Int("kept", len(r.filtered)).
		Int("removed", removed).
		Msg("Filtered records to operating and closed")

	if len(r.filtered) == 0 {
		return &TrainingDataError{Path: r.path, Stage: StageFiltering, Rows: len(r.cleaned.Records)}
	}
	return nil
}

func (t *Trainer) encode(_ context.Context, r *run) error {
	labels := make([]string, len(r.filtered))
	for i, rec := range r.filtered {
		labels[i] = rec.Status
	}
	r.encoder, r.codes = FitTransform(labels)
	r.encoder.FitID = r.fitID
	return nil
}

func (t *Trainer) extract(_ context.Context, r *run) error {
	derived := features.Derive(r.filtered)
	r.set.X = make([][]float64, len(derived))
	r.set.y = r.codes
	for i, rec := range derived {
		v := rec.Vector()
		r.set.X[i] = v[:]
	}
	return nil
}

func (t *Trainer) split(_ context.Context, r *run) error {
	r.parts = splitTrainTest(r.set, t.settings.TestSize, t.settings.Seed)
	if r.parts.train.Len() == 0 {
		return &TrainingDataError{Path: r.path, Stage: StageSplitting, Rows: r.set.Len()}
	}
	return nil
}

func (t *Trainer) fit(ctx context.Context, r *run) error {
	forest := NewRandomForest(ForestParams{
		Estimators:      t.settings.Estimators,
		MinSamplesSplit: t.settings.MinSamplesSplit,
		MaxDepth:        t.settings.MaxDepth,
		Seed:            t.settings.Seed,
	})
	if err := forest.Fit(ctx, r.parts.train.X, r.parts.train.y, r.encoder.NumClasses()); err != nil {
		return err
	}

	r.model = &Model{
		FitID:     r.fitID,
		Features:  append([]string(nil), common.FeatureNames...),
		TrainedAt: t.now().UTC(),
		Forest:    forest,
	}
	return nil
}

func (t *Trainer) persist(_ context.Context, r *run) error {
	if t.store == nil {
		return fmt.Errorf("no artifact store configured")
	}

	model, err := MarshalModel(r.model)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	encoder, err := MarshalEncoder(r.encoder)
	if err != nil {
		return fmt.Errorf("encode label encoder: %w", err)
	}

	pair := storage.ArtifactPair{
		Info: storage.ArtifactInfo{
			FitID:        r.fitID,
			CreatedAt:    r.model.TrainedAt,
			SourcePath:   r.path,
			CleanedRows:  len(r.cleaned.Records),
			FilteredRows: len(r.filtered),
			TrainingRows: r.parts.train.Len(),
			HoldoutRows:  r.parts.holdout.Len(),
			Estimators:   len(r.model.Forest.Trees),
			Seed:         t.settings.Seed,
			Classes:      append([]string(nil), r.encoder.Classes...),
		},
		Model:   model,
		Encoder: encoder,
	}
	if err := t.store.SaveArtifactPair(pair); err != nil {
		return fmt.Errorf("save artifact pair to %s: %w", t.store.Location(), err)
	}
	return nil
}
