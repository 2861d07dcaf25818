package ml

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable puts class 1 above amount 1000 and class 0 below it.
func separable() ([][]float64, []int) {
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(100 + i*10), float64(i % 3), float64(i * 30), float64(i % 2)})
		y = append(y, 0)
		X = append(X, []float64{float64(5000 + i*100), float64(i % 3), float64(i * 30), float64(i % 2)})
		y = append(y, 1)
	}
	return X, y
}

func TestRandomForest_FitsSeparableData(t *testing.T) {
	X, y := separable()
	forest := NewRandomForest(ForestParams{Estimators: 25, Seed: 42})
	require.NoError(t, forest.Fit(context.Background(), X, y, 2))

	assert.Len(t, forest.Trees, 25)
	assert.Equal(t, 4, forest.NFeatures)

	low, err := forest.Predict([]float64{150, 1, 60, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, low)

	high, err := forest.Predict([]float64{9000, 1, 60, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, high)
}

func TestRandomForest_ProbabilitiesSumToOne(t *testing.T) {
	X, y := separable()
	forest := NewRandomForest(ForestParams{Estimators: 10, Seed: 7})
	require.NoError(t, forest.Fit(context.Background(), X, y, 2))

	proba, err := forest.PredictProba([]float64{1200, 2, 400, 1})
	require.NoError(t, err)
	require.Len(t, proba, 2)
	assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-9)
}

func TestRandomForest_Deterministic(t *testing.T) {
	X, y := separable()

	a := NewRandomForest(ForestParams{Estimators: 15, Seed: 42})
	b := NewRandomForest(ForestParams{Estimators: 15, Seed: 42})
	require.NoError(t, a.Fit(context.Background(), X, y, 2))
	require.NoError(t, b.Fit(context.Background(), X, y, 2))

	assert.True(t, reflect.DeepEqual(a.Trees, b.Trees), "same seed must grow identical trees")
}

func TestRandomForest_ConstantFeaturesMakeLeaf(t *testing.T) {
	X := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	y := []int{0, 1, 0, 1}

	forest := NewRandomForest(ForestParams{Estimators: 3, Seed: 1})
	require.NoError(t, forest.Fit(context.Background(), X, y, 2))

	for _, tree := range forest.Trees {
		require.Len(t, tree.Nodes, 1)
		assert.Equal(t, -1, tree.Nodes[0].Feature)
	}
}

func TestRandomForest_MaxDepth(t *testing.T) {
	X, y := separable()
	forest := NewRandomForest(ForestParams{Estimators: 5, MaxDepth: 1, Seed: 3})
	require.NoError(t, forest.Fit(context.Background(), X, y, 2))

	for _, tree := range forest.Trees {
		assert.LessOrEqual(t, len(tree.Nodes), 3)
	}
}

func TestRandomForest_Errors(t *testing.T) {
	forest := NewRandomForest(ForestParams{Estimators: 2})

	_, err := forest.Predict([]float64{1, 2, 3, 4})
	assert.Error(t, err, "unfitted forest")

	assert.Error(t, forest.Fit(context.Background(), nil, nil, 2))
	assert.Error(t, forest.Fit(context.Background(), [][]float64{{1}}, []int{0, 1}, 2))

	X, y := separable()
	require.NoError(t, forest.Fit(context.Background(), X, y, 2))
	_, err = forest.Predict([]float64{1, 2})
	assert.Error(t, err, "wrong feature count")
}

func TestRandomForest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	X, y := separable()
	forest := NewRandomForest(ForestParams{Estimators: 4})
	assert.ErrorIs(t, forest.Fit(ctx, X, y, 2), context.Canceled)
}

func TestModelSerialization(t *testing.T) {
	X, y := separable()
	forest := NewRandomForest(ForestParams{Estimators: 8, Seed: 42})
	require.NoError(t, forest.Fit(context.Background(), X, y, 2))
	model := &Model{FitID: "fit-m", Forest: forest}

	data, err := MarshalModel(model)
	require.NoError(t, err)
	restored, err := UnmarshalModel(data)
	require.NoError(t, err)
	assert.Equal(t, "fit-m", restored.FitID)

	for _, x := range X {
		want, _ := forest.PredictProba(x)
		got, err := restored.Forest.PredictProba(x)
		require.NoError(t, err)
		for c := range want {
			assert.InDelta(t, want[c], got[c], 1e-12)
		}
	}

	_, err = UnmarshalModel([]byte(`{"fit_id":"x"}`))
	assert.Error(t, err)
}

func TestGini(t *testing.T) {
	assert.Equal(t, 0.0, gini([]float64{4, 0}, 4))
	assert.InDelta(t, 0.5, gini([]float64{2, 2}, 4), 1e-12)
	assert.Equal(t, 0.0, gini([]float64{0, 0}, 0))
	assert.False(t, math.IsNaN(gini([]float64{1, 3}, 4)))
}

func TestSplitTrainTest(t *testing.T) {
	set := trainingSet{}
	for i := 0; i < 9; i++ {
		set.X = append(set.X, []float64{float64(i), 0, 0, 0})
		set.y = append(set.y, i%2)
	}

	parts := splitTrainTest(set, 0.2, 42)
	assert.Equal(t, 2, parts.holdout.Len(), "ceil(9*0.2)")
	assert.Equal(t, 7, parts.train.Len())

	again := splitTrainTest(set, 0.2, 42)
	assert.Equal(t, parts.train.X, again.train.X)

	seen := map[float64]bool{}
	for _, x := range append(parts.train.X, parts.holdout.X...) {
		seen[x[0]] = true
	}
	assert.Len(t, seen, 9, "every row lands in exactly one partition")

	single := splitTrainTest(trainingSet{X: [][]float64{{1, 0, 0, 0}}, y: []int{0}}, 0.2, 42)
	assert.Equal(t, 0, single.train.Len())

	none := splitTrainTest(set, 0, 42)
	assert.Equal(t, 9, none.train.Len())
}
