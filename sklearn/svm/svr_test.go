package svm

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/core/model"
	"github.com/YuminosukeSato/salesml/pkg/errors"
)

func sineData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		X.Set(i, 0, x)
		y.SetVec(i, math.Sin(x))
	}
	return X, y
}

func TestSVR_LinearKernelRecoversLine(t *testing.T) {
	n := 10
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y.SetVec(i, 2*float64(i)+1)
	}

	svr := NewSVR(WithKernel(KernelLinear), WithC(100), WithEpsilon(0.01))
	require.NoError(t, svr.Fit(X, y))

	pred, err := svr.PredictOne([]float64{4.5})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pred, 0.1)
}

func TestSVR_RBFFitsSine(t *testing.T) {
	X, y := sineData(40)

	svr := NewSVR(WithC(10), WithGamma(1.0))
	require.NoError(t, svr.Fit(X, y))

	score, err := svr.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9)

	pred, err := svr.PredictOne([]float64{math.Pi / 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pred, 0.2)
}

// The solution must satisfy the epsilon-SVR optimality conditions:
// box constraints, sum(coef) = 0, and residuals inside/on the tube.
func TestSVR_OptimalityConditions(t *testing.T) {
	X, y := sineData(30)
	const c, eps = 1.0, 0.1

	svr := NewSVR(WithC(c), WithEpsilon(eps))
	require.NoError(t, svr.Fit(X, y))

	coef := svr.DualCoef()
	require.NotEmpty(t, coef)
	assert.InDelta(t, 0.0, floats.Sum(coef), 1e-9)
	for _, a := range coef {
		assert.LessOrEqual(t, math.Abs(a), c+1e-12)
	}

	pred, err := svr.Predict(X)
	require.NoError(t, err)

	coefBySample := map[float64]float64{}
	for k, sv := range svr.SupportVectors() {
		coefBySample[sv[0]] = coef[k]
	}
	const slack = 1e-2
	for i := 0; i < y.Len(); i++ {
		resid := y.AtVec(i) - pred.At(i, 0)
		a, isSV := coefBySample[X.At(i, 0)]
		switch {
		case !isSV:
			assert.LessOrEqual(t, math.Abs(resid), eps+slack, "non-SV %d outside tube", i)
		case math.Abs(a) < c:
			assert.InDelta(t, eps, math.Abs(resid), slack, "free SV %d not on tube edge", i)
		default:
			assert.GreaterOrEqual(t, math.Abs(resid), eps-slack, "bounded SV %d inside tube", i)
		}
	}
}

func TestSVR_Deterministic(t *testing.T) {
	X, y := sineData(25)
	query := []float64{1.234}

	a := NewSVR()
	require.NoError(t, a.Fit(X, y))
	pa, err := a.PredictOne(query)
	require.NoError(t, err)

	b := NewSVR()
	require.NoError(t, b.Fit(X, y))
	pb, err := b.PredictOne(query)
	require.NoError(t, err)

	assert.Equal(t, pa, pb)
}

func TestSVR_RefitReplacesState(t *testing.T) {
	X, y := sineData(20)
	svr := NewSVR()
	require.NoError(t, svr.Fit(X, y))

	X2 := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})
	y2 := mat.NewVecDense(3, []float64{0, 5, 10})
	require.NoError(t, svr.Fit(X2, y2))

	for _, sv := range svr.SupportVectors() {
		assert.Len(t, sv, 2)
	}
	_, err := svr.PredictOne([]float64{1})
	assert.Error(t, err, "old feature count must not be accepted after refit")
	_, err = svr.PredictOne([]float64{1, 1})
	assert.NoError(t, err)
}

func TestSVR_ConstantFeatures(t *testing.T) {
	X := mat.NewDense(5, 4, []float64{
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
	})
	y := mat.NewVecDense(5, []float64{1, 2, 3, 4, 5})

	svr := NewSVR()
	require.NoError(t, svr.Fit(X, y))
	assert.Equal(t, 1.0, svr.Gamma())

	pred, err := svr.PredictOne([]float64{9700, 1017, 469, 0})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(pred) || math.IsInf(pred, 0))
}

func TestSVR_Errors(t *testing.T) {
	svr := NewSVR()

	_, err := svr.Predict(mat.NewDense(1, 4, nil))
	require.Error(t, err)
	assert.Equal(t, errors.StagePredict, errors.StageOf(err))
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	nan := mat.NewDense(2, 1, []float64{1, math.NaN()})
	err = svr.Fit(nan, mat.NewVecDense(2, []float64{1, 2}))
	require.Error(t, err)
	assert.Equal(t, errors.StageFit, errors.StageOf(err))

	err = svr.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewVecDense(2, []float64{1, math.Inf(1)}))
	assert.Equal(t, errors.StageFit, errors.StageOf(err))

	err = svr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))
	assert.Equal(t, errors.StageFit, errors.StageOf(err))

	require.NoError(t, svr.Fit(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}), mat.NewVecDense(3, []float64{1, 2, 3})))
	_, err = svr.PredictOne([]float64{1, 2, 3})
	require.Error(t, err)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
	assert.Equal(t, errors.StagePredict, errors.StageOf(err))
}

func TestSVR_InvalidParams(t *testing.T) {
	X, y := sineData(5)
	tests := []struct {
		name string
		opt  SVROption
	}{
		{"negative C", WithC(-1)},
		{"negative epsilon", WithEpsilon(-0.1)},
		{"zero gamma", WithGamma(0)},
		{"unknown gamma mode", WithGammaMode("fast")},
		{"unknown kernel", WithKernel("poly")},
		{"zero max_iter", WithMaxIter(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSVR(tt.opt).Fit(X, y)
			var validation *errors.ValidationError
			assert.True(t, errors.As(err, &validation), "got %v", err)
		})
	}
}

func TestSVR_ConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetZerologWarnFunc(func(w error) { warnings = append(warnings, w) })
	defer errors.SetZerologWarnFunc(nil)

	X, y := sineData(30)
	svr := NewSVR(WithMaxIter(1))
	require.NoError(t, svr.Fit(X, y))
	assert.Equal(t, 1, svr.NIter())

	require.Len(t, warnings, 1)
	var conv *errors.ConvergenceWarning
	assert.True(t, errors.As(warnings[0], &conv))
}

func TestSVR_ExportImportWeights(t *testing.T) {
	X, y := sineData(20)
	src := NewSVR(WithC(5))
	require.NoError(t, src.Fit(X, y))

	w, err := src.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, "SVR", w.ModelType)
	assert.Equal(t, 1, w.NFeatures)

	path := filepath.Join(t.TempDir(), "svr.json")
	require.NoError(t, model.SaveWeights(w, path))
	loaded, err := model.LoadWeights(path)
	require.NoError(t, err)

	dst := NewSVR()
	require.NoError(t, dst.ImportWeights(loaded))

	want, err := src.Predict(X)
	require.NoError(t, err)
	got, err := dst.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
	assert.Equal(t, src.Gamma(), dst.Gamma())
}

func TestSVR_ImportRejectsOtherModels(t *testing.T) {
	err := NewSVR().ImportWeights(&model.ModelWeights{ModelType: "LinearRegression"})
	assert.Error(t, err)
}

func TestScaleGamma(t *testing.T) {
	rows := [][]float64{{0, 2}, {2, 0}}
	assert.InDelta(t, 0.5, scaleGamma(rows), 1e-12)
	assert.Equal(t, 1.0, scaleGamma([][]float64{{3, 3}, {3, 3}}))
}

func TestGramMatrixParallelMatchesSequential(t *testing.T) {
	n := 100
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = []float64{float64(i) / 10, float64(i%7) / 3}
	}
	k := RBFKernel{Gamma: 0.5}
	K := gramMatrix(k, rows)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.Equal(t, k.Compute(rows[i], rows[j]), K.At(i, j))
		}
	}
	assert.Equal(t, 1.0, K.At(3, 3))
}

func TestSVR_String(t *testing.T) {
	svr := NewSVR()
	assert.Equal(t, "SVR(kernel=rbf, C=1, epsilon=0.1, gamma=scale)", svr.String())
}

// brokenMatrix reports valid dimensions but panics on element access.
type brokenMatrix struct{ r, c int }

func (m brokenMatrix) Dims() (int, int)    { return m.r, m.c }
func (m brokenMatrix) At(i, j int) float64 { panic("storage released") }
func (m brokenMatrix) T() mat.Matrix       { return mat.Transpose{Matrix: m} }

func TestSVR_FitPanicBecomesFitError(t *testing.T) {
	svr := NewSVR()
	err := svr.Fit(brokenMatrix{r: 4, c: 2}, mat.NewVecDense(4, []float64{1, 2, 3, 4}))
	require.Error(t, err)

	var fitErr *errors.FitError
	assert.True(t, errors.As(err, &fitErr), "got %v", err)
	var panicErr *errors.PanicError
	assert.True(t, errors.As(err, &panicErr))
	assert.Equal(t, errors.StageFit, errors.StageOf(err))
	assert.Contains(t, err.Error(), "storage released")
	assert.False(t, svr.IsFitted())
}
