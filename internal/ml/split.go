package ml

import (
	"math"
	"math/rand"
)

// trainingSet is the encoded feature matrix with one label code per row.
type trainingSet struct {
	X [][]float64
	y []int
}

func (s trainingSet) Len() int { return len(s.X) }

// split holds the seeded train/holdout partition. The holdout part is kept
// for reporting only and is never scored.
type split struct {
	train   trainingSet
	holdout trainingSet
}

// splitTrainTest shuffles rows with a seeded permutation and moves
// ceil(n*testSize) of them to the holdout set.
func splitTrainTest(set trainingSet, testSize float64, seed int64) split {
	n := set.Len()
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest > n {
		nTest = n
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	var out split
	for k, i := range perm {
		dst := &out.train
		if k < nTest {
			dst = &out.holdout
		}
		dst.X = append(dst.X, set.X[i])
		dst.y = append(dst.y, set.y[i])
	}
	return out
}
