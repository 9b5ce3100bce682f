package svm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/salesml/core/parallel"
)

// Kernel computes the inner product of two samples in feature space.
type Kernel interface {
	Compute(a, b []float64) float64
	Name() string
}

// RBFKernel is the radial basis function kernel exp(-gamma * ||a-b||^2).
type RBFKernel struct {
	Gamma float64
}

// Compute implements Kernel.
func (k RBFKernel) Compute(a, b []float64) float64 {
	return math.Exp(-k.Gamma * sqDist(a, b))
}

// Name implements Kernel.
func (k RBFKernel) Name() string { return KernelRBF }

// LinearKernel is the dot product a·b.
type LinearKernel struct{}

// Compute implements Kernel.
func (LinearKernel) Compute(a, b []float64) float64 { return floats.Dot(a, b) }

// Name implements Kernel.
func (LinearKernel) Name() string { return KernelLinear }

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// gramMatrix returns the l×l kernel matrix of rows. Rows are filled in
// parallel above parallel.DefaultThreshold samples; each worker owns whole rows.
func gramMatrix(k Kernel, rows [][]float64) *mat.Dense {
	l := len(rows)
	K := mat.NewDense(l, l, nil)
	parallel.ParallelizeWithThreshold(l, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := K.RawRowView(i)
			for j := 0; j < l; j++ {
				row[j] = k.Compute(rows[i], rows[j])
			}
		}
	})
	return K
}

// denseRows copies the rows of X into a slice of slices.
func denseRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(make([]float64, c), i, X)
	}
	return rows
}

// scaleGamma is scikit-learn's gamma="scale": 1 / (n_features * Var(X)),
// with the variance taken over every entry of X. It returns 1 when Var(X) is 0.
func scaleGamma(rows [][]float64) float64 {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 1.0
	}
	nFeatures := len(rows[0])
	all := make([]float64, 0, len(rows)*nFeatures)
	for _, r := range rows {
		all = append(all, r...)
	}
	variance := stat.PopVariance(all, nil)
	if variance == 0 {
		return 1.0
	}
	return 1.0 / (float64(nFeatures) * variance)
}
