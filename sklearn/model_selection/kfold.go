package model_selection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/core/model"
	"github.com/YuminosukeSato/salesml/pkg/errors"
)

// Fold is one train/validation split of a KFold.
type Fold struct {
	TrainIndex []int
	TestIndex  []int
}

// KFold splits n rows into NSplits consecutive folds, optionally shuffled.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a new k-fold splitter.
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) *KFold {
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// Split returns the folds for n rows. The first n%NSplits folds get one extra row.
func (kf *KFold) Split(n int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", kf.NSplits)
	}
	if n < kf.NSplits {
		return nil, errors.NewValidationError("n_splits", "cannot exceed the number of rows", kf.NSplits)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.RandomSeed, kf.RandomSeed))
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	extra := n % kf.NSplits
	start := 0
	for k := 0; k < kf.NSplits; k++ {
		size := foldSize
		if k < extra {
			size++
		}
		end := start + size

		test := append([]int(nil), indices[start:end]...)
		train := make([]int, 0, n-size)
		train = append(train, indices[:start]...)
		train = append(train, indices[end:]...)
		folds[k] = Fold{TrainIndex: train, TestIndex: test}
		start = end
	}
	return folds, nil
}

// CrossValScore fits a fresh estimator from newModel on each fold's train rows
// and returns its Score on the held-out rows.
func CrossValScore(newModel func() model.Regressor, X mat.Matrix, y mat.Vector, cv *KFold) ([]float64, error) {
	n, _ := X.Dims()
	folds, err := cv.Split(n)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(folds))
	for k, fold := range folds {
		xTrain, yTrain := Take(X, y, fold.TrainIndex)
		xTest, yTest := Take(X, y, fold.TestIndex)

		m := newModel()
		if err := m.Fit(xTrain, yTrain); err != nil {
			return nil, errors.Wrapf(err, "fold %d", k)
		}
		score, err := m.Score(xTest, yTest)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", k)
		}
		scores[k] = score
	}
	return scores, nil
}
