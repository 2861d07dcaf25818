package ml

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestParams configures a RandomForest.
type ForestParams struct {
	Estimators      int   `json:"estimators"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MaxDepth        int   `json:"max_depth"`    // 0 grows trees until leaves are pure
	MaxFeatures     int   `json:"max_features"` // 0 means floor(sqrt(n_features))
	Seed            int64 `json:"seed"`
}

// treeNode is a node of a flattened decision tree. Leaves have Feature -1.
type treeNode struct {
	Feature   int       `json:"f"`
	Threshold float64   `json:"t,omitempty"`
	Left      int       `json:"l,omitempty"`
	Right     int       `json:"r,omitempty"`
	Proba     []float64 `json:"p,omitempty"`
}

// DecisionTree is a CART classifier stored as a node array, root first.
type DecisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// RandomForest is a bagged ensemble of gini decision trees. Fitting is
// deterministic for a given Seed regardless of how many trees grow in parallel.
type RandomForest struct {
	Params    ForestParams   `json:"params"`
	NFeatures int            `json:"n_features"`
	NClasses  int            `json:"n_classes"`
	Trees     []DecisionTree `json:"trees"`
}

// NewRandomForest returns an unfitted forest.
func NewRandomForest(p ForestParams) *RandomForest {
	if p.Estimators < 1 {
		p.Estimators = 1
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	return &RandomForest{Params: p}
}

// Fit grows Params.Estimators trees on bootstrap samples of X.
func (f *RandomForest) Fit(ctx context.Context, X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return fmt.Errorf("fit forest: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("fit forest: %d rows but %d labels", len(X), len(y))
	}
	if nClasses < 1 {
		return fmt.Errorf("fit forest: need at least one class")
	}

	f.NFeatures = len(X[0])
	f.NClasses = nClasses
	maxFeatures := f.Params.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > f.NFeatures {
		maxFeatures = int(math.Max(1, math.Floor(math.Sqrt(float64(f.NFeatures)))))
	}

	// per-tree seeds are drawn before any tree grows
	master := rand.New(rand.NewSource(f.Params.Seed))
	seeds := make([]int64, f.Params.Estimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]DecisionTree, f.Params.Estimators)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range trees {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			b := &treeBuilder{
				X:           X,
				y:           y,
				nClasses:    nClasses,
				maxFeatures: maxFeatures,
				minSplit:    f.Params.MinSamplesSplit,
				maxDepth:    f.Params.MaxDepth,
				rng:         rand.New(rand.NewSource(seeds[i])),
			}
			trees[i] = b.grow()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fit forest: %w", err)
	}

	f.Trees = trees
	return nil
}

// PredictProba averages the leaf class distributions of every tree.
func (f *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("forest is not fitted")
	}
	if len(x) != f.NFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", f.NFeatures, len(x))
	}

	proba := make([]float64, f.NClasses)
	for i := range f.Trees {
		leaf, err := f.Trees[i].leaf(x)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		for c, p := range leaf.Proba {
			if c < len(proba) {
				proba[c] += p
			}
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba, nil
}

// Predict returns the most probable class; ties go to the lower code.
func (f *RandomForest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return best, nil
}

func (t *DecisionTree) leaf(x []float64) (*treeNode, error) {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if i < 0 || i >= len(t.Nodes) {
			return nil, fmt.Errorf("node index %d out of range", i)
		}
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return n, nil
		}
		if n.Feature >= len(x) {
			return nil, fmt.Errorf("node %d splits on missing feature %d", i, n.Feature)
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return nil, fmt.Errorf("cycle in tree")
}

type treeBuilder struct {
	X           [][]float64
	y           []int
	nClasses    int
	maxFeatures int
	minSplit    int
	maxDepth    int
	rng         *rand.Rand
	nodes       []treeNode
}

func (b *treeBuilder) grow() DecisionTree {
	n := len(b.X)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = b.rng.Intn(n)
	}
	b.build(sample, 0)
	return DecisionTree{Nodes: b.nodes}
}

func (b *treeBuilder) build(idx []int, depth int) int {
	counts := make([]float64, b.nClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}

	self := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Feature: -1})

	stop := len(idx) < b.minSplit || isPure(counts) || (b.maxDepth > 0 && depth >= b.maxDepth)
	if !stop {
		if feature, threshold, ok := b.bestSplit(idx, counts); ok {
			left := make([]int, 0, len(idx))
			right := make([]int, 0, len(idx))
			for _, i := range idx {
				if b.X[i][feature] <= threshold {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			l := b.build(left, depth+1)
			r := b.build(right, depth+1)
			b.nodes[self] = treeNode{Feature: feature, Threshold: threshold, Left: l, Right: r}
			return self
		}
	}

	proba := make([]float64, b.nClasses)
	for c := range counts {
		proba[c] = counts[c] / float64(len(idx))
	}
	b.nodes[self].Proba = proba
	return self
}

// bestSplit draws candidate features in random order and keeps drawing past
// maxFeatures only while none of the drawn features could split the node.
func (b *treeBuilder) bestSplit(idx []int, parent []float64) (int, float64, bool) {
	total := float64(len(idx))
	bestScore := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, len(idx))
	left := make([]float64, b.nClasses)
	right := make([]float64, b.nClasses)

	visited := 0
	for _, feature := range b.rng.Perm(len(b.X[0])) {
		if visited >= b.maxFeatures && bestFeature >= 0 {
			break
		}
		visited++

		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.X[sorted[a]][feature] < b.X[sorted[c]][feature]
		})
		if b.X[sorted[0]][feature] == b.X[sorted[len(sorted)-1]][feature] {
			continue // constant in this node
		}

		for c := range left {
			left[c] = 0
		}
		copy(right, parent)

		for k := 0; k < len(sorted)-1; k++ {
			cls := b.y[sorted[k]]
			left[cls]++
			right[cls]--

			lo, hi := b.X[sorted[k]][feature], b.X[sorted[k+1]][feature]
			if lo == hi {
				continue
			}
			nl := float64(k + 1)
			nr := total - nl
			score := (nl*gini(left, nl) + nr*gini(right, nr)) / total
			if score < bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold >= hi {
					bestThreshold = lo
				}
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := c / n
		sum += p * p
	}
	return 1 - sum
}

func isPure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
