// Package model_selection provides seeded train/test splitting and k-fold
// cross-validation for row-aligned (X, y) data.
package model_selection

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/pkg/errors"
)

// Split holds the row indices and the materialised partitions of a train/test split.
type Split struct {
	// TrainIndex and TestIndex are row indices into the original X, in split order.
	TrainIndex []int
	TestIndex  []int

	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense
}

// Permutation returns a seeded permutation of [0, n). The same seed and n
// always give the same permutation.
func Permutation(n int, seed uint64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}

// TestCount returns ceil(testSize*n), the number of test rows for n samples.
func TestCount(n int, testSize float64) int {
	return int(math.Ceil(testSize * float64(n)))
}

// TrainTestSplit partitions the rows of X and y into train and test sets.
// The first ceil(testSize*n) rows of a seeded permutation form the test set,
// the rest form the train set.
func TrainTestSplit(X mat.Matrix, y mat.Vector, testSize float64, seed uint64) (*Split, error) {
	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, errors.NewSplitError(n, testSize, "test_size must be in (0, 1)")
	}
	if n < 2 {
		return nil, errors.NewSplitError(n, testSize, "need at least 2 rows")
	}
	nTest := TestCount(n, testSize)
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, errors.NewSplitError(n, testSize,
			fmt.Sprintf("would give %d train and %d test rows", nTrain, nTest))
	}

	perm := Permutation(n, seed)
	s := &Split{
		TestIndex:  perm[:nTest],
		TrainIndex: perm[nTest:],
	}
	s.XTrain, s.YTrain = Take(X, y, s.TrainIndex)
	s.XTest, s.YTest = Take(X, y, s.TestIndex)
	return s, nil
}

// Take copies the given rows of X and y, in order.
func Take(X mat.Matrix, y mat.Vector, rows []int) (*mat.Dense, *mat.VecDense) {
	_, c := X.Dims()
	xs := mat.NewDense(len(rows), c, nil)
	ys := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			xs.Set(i, j, X.At(r, j))
		}
		ys.SetVec(i, y.AtVec(r))
	}
	return xs, ys
}
