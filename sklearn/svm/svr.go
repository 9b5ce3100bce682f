// Package svm implements epsilon-support vector regression.
package svm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/core/model"
	"github.com/YuminosukeSato/salesml/metrics"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/pkg/log"
)

const modelName = "SVR"

var (
	_ model.Regressor      = (*SVR)(nil)
	_ model.WeightExporter = (*SVR)(nil)
)

// SVR is epsilon-support vector regression compatible with scikit-learn's SVR.
// The dual problem is solved with an SMO solver in the style of libsvm.
//
//	svr := svm.NewSVR(svm.WithC(1.0), svm.WithEpsilon(0.1))
//	if err := svr.Fit(XTrain, yTrain); err != nil { ... }
//	pred, err := svr.Predict(query)
type SVR struct {
	state *model.StateManager
	id    string

	// Hyperparameters
	kernelName string
	c          float64
	epsilon    float64
	gamma      float64
	gammaMode  string
	tol        float64
	maxIter    int

	// Learned parameters
	kernel         Kernel
	supportVectors [][]float64
	dualCoef       []float64
	intercept      float64
	nIter          int
}

// NewSVR は新しいSVRモデルを作成する。デフォルトは scikit-learn と同じ
// kernel="rbf", C=1.0, epsilon=0.1, gamma="scale", tol=1e-3, max_iter=-1
func NewSVR(options ...SVROption) *SVR {
	s := &SVR{
		state:      model.NewStateManager(modelName),
		id:         uuid.NewString(),
		kernelName: KernelRBF,
		c:          1.0,
		epsilon:    0.1,
		gammaMode:  GammaScale,
		tol:        1e-3,
		maxIter:    -1,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *SVR) validateParams() error {
	if s.c <= 0 {
		return errors.NewValidationError("C", "must be positive", s.c)
	}
	if s.epsilon < 0 {
		return errors.NewValidationError("epsilon", "must be non-negative", s.epsilon)
	}
	if s.tol <= 0 {
		return errors.NewValidationError("tol", "must be positive", s.tol)
	}
	if s.maxIter == 0 || s.maxIter < -1 {
		return errors.NewValidationError("max_iter", "must be positive or -1", s.maxIter)
	}
	switch s.kernelName {
	case KernelRBF:
		if s.gammaMode == "" && s.gamma <= 0 {
			return errors.NewValidationError("gamma", "must be positive", s.gamma)
		}
		if s.gammaMode != "" && s.gammaMode != GammaScale && s.gammaMode != GammaAuto {
			return errors.NewValidationError("gamma", "must be a positive number, scale or auto", s.gammaMode)
		}
	case KernelLinear:
	default:
		return errors.NewValidationError("kernel", "must be rbf or linear", s.kernelName)
	}
	return nil
}

// Fit はモデルを訓練データで学習する。以前の学習結果は全て置き換えられる。
// y は n×1 の行列（*mat.VecDense など）
func (s *SVR) Fit(X, y mat.Matrix) (err error) {
	defer func() {
		var panicErr *errors.PanicError
		if errors.As(err, &panicErr) {
			err = errors.NewFitError(modelName, "solver panicked", err)
		}
	}()
	defer errors.Recover(&err, "SVR.Fit")

	if err := s.validateParams(); err != nil {
		return errors.NewFitError(modelName, "invalid hyperparameters", err)
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewFitError(modelName, "empty training data", errors.ErrEmptyData)
	}
	if yRows != rows || yCols != 1 {
		return errors.NewFitError(modelName, "target shape mismatch",
			errors.NewDimensionError("SVR.Fit", rows, yRows, 0))
	}
	if err := errors.CheckMatrix("SVR.Fit X", X, 0); err != nil {
		return errors.NewFitError(modelName, "non-finite feature values", err)
	}
	if err := errors.CheckMatrix("SVR.Fit y", y, 0); err != nil {
		return errors.NewFitError(modelName, "non-finite target values", err)
	}

	start := time.Now()
	s.state.Reset()

	xs := denseRows(X)
	target := mat.Col(nil, 0, y)

	switch s.kernelName {
	case KernelLinear:
		s.kernel = LinearKernel{}
	default:
		gamma := s.gamma
		switch s.gammaMode {
		case GammaScale:
			gamma = scaleGamma(xs)
		case GammaAuto:
			gamma = 1.0 / float64(cols)
		}
		s.kernel = RBFKernel{Gamma: gamma}
	}

	maxIter := s.maxIter
	if maxIter == -1 {
		maxIter = max(defaultMaxIter, 100*rows)
	}

	K := gramMatrix(s.kernel, xs)
	solver := newSMOSolver(K, target, s.c, s.epsilon, s.tol, maxIter)
	res := solver.solve()
	if !res.converged {
		errors.Warn(errors.NewConvergenceWarning("SVR SMO", res.iterations,
			"solver terminated early, consider scaling the features or increasing max_iter"))
	}
	if err := errors.CheckScalar("SVR.Fit rho", res.rho, res.iterations); err != nil {
		return errors.NewFitError(modelName, "solver diverged", err)
	}
	if err := errors.CheckNumericalStability("SVR.Fit dual_coef", res.coef, res.iterations); err != nil {
		return errors.NewFitError(modelName, "solver diverged", err)
	}

	var svs [][]float64
	var coefs []float64
	for i, coef := range res.coef {
		if coef != 0 {
			svs = append(svs, xs[i])
			coefs = append(coefs, coef)
		}
	}
	s.supportVectors = svs
	s.dualCoef = coefs
	s.intercept = -res.rho
	s.nIter = res.iterations
	s.state.SetFitted(cols, rows)

	s.logger().Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.IterationKey, res.iterations,
		log.SupportVectorsKey, len(s.dualCoef),
		log.GammaKey, s.Gamma(),
		log.RhoKey, res.rho,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は各行に対する予測値を n×1 の行列で返す
func (s *SVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("Predict"); err != nil {
		return nil, errors.NewPredictError(modelName, "model is not fitted", err)
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.NewPredictError(modelName, "no rows to predict", errors.ErrEmptyData)
	}
	if err := s.state.RequireFeatures("SVR.Predict", cols); err != nil {
		return nil, errors.NewPredictError(modelName, "feature dimension mismatch", err)
	}

	out := mat.NewDense(rows, 1, nil)
	x := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(x, i, X)
		out.Set(i, 0, s.decision(x))
	}
	if err := errors.CheckMatrix("SVR.Predict", out, 0); err != nil {
		return nil, errors.NewPredictError(modelName, "non-finite prediction", err)
	}
	return out, nil
}

// PredictOne は1点の特徴量ベクトルに対する予測値を返す
func (s *SVR) PredictOne(x []float64) (float64, error) {
	pred, err := s.Predict(mat.NewDense(1, len(x), append([]float64(nil), x...)))
	if err != nil {
		return 0, err
	}
	return pred.At(0, 0), nil
}

func (s *SVR) decision(x []float64) float64 {
	sum := s.intercept
	for k, sv := range s.supportVectors {
		sum += s.dualCoef[k] * s.kernel.Compute(sv, x)
	}
	return sum
}

// Score は決定係数 R² を返す
func (s *SVR) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	yTrue, err := metrics.ColumnVector(y)
	if err != nil {
		return 0, err
	}
	yPred, err := metrics.ColumnVector(pred)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yTrue, yPred)
}

// IsFitted はモデルが学習済みかどうかを返す
func (s *SVR) IsFitted() bool {
	return s.state.IsFitted()
}

// SupportVectors returns a copy of the support vectors.
func (s *SVR) SupportVectors() [][]float64 {
	out := make([][]float64, len(s.supportVectors))
	for i, sv := range s.supportVectors {
		out[i] = append([]float64(nil), sv...)
	}
	return out
}

// DualCoef returns alpha_i - alpha*_i for each support vector.
func (s *SVR) DualCoef() []float64 {
	return append([]float64(nil), s.dualCoef...)
}

// Intercept returns the constant term of the decision function.
func (s *SVR) Intercept() float64 { return s.intercept }

// NIter returns the number of SMO iterations of the last Fit.
func (s *SVR) NIter() int { return s.nIter }

// Gamma returns the RBF gamma in use, resolving "scale" and "auto" after Fit.
// It is 0 for the linear kernel.
func (s *SVR) Gamma() float64 {
	if k, ok := s.kernel.(RBFKernel); ok {
		return k.Gamma
	}
	if s.kernelName == KernelRBF && s.gammaMode == "" {
		return s.gamma
	}
	return 0
}

// GetParams はハイパーパラメータを返す
func (s *SVR) GetParams() map[string]interface{} {
	gamma := interface{}(s.gamma)
	if s.gammaMode != "" {
		gamma = s.gammaMode
	}
	return map[string]interface{}{
		"kernel":   s.kernelName,
		"C":        s.c,
		"epsilon":  s.epsilon,
		"gamma":    gamma,
		"tol":      s.tol,
		"max_iter": s.maxIter,
	}
}

// ExportWeights は学習済みパラメータをエクスポートする
func (s *SVR) ExportWeights() (*model.ModelWeights, error) {
	if err := s.state.RequireFitted("ExportWeights"); err != nil {
		return nil, err
	}
	params := s.GetParams()
	params["gamma_value"] = s.Gamma()
	nFeatures, _ := s.state.Dimensions()

	w := &model.ModelWeights{
		ModelType:       modelName,
		Version:         model.WeightsVersion,
		NFeatures:       nFeatures,
		SupportVectors:  s.SupportVectors(),
		DualCoef:        s.DualCoef(),
		Intercept:       s.intercept,
		Hyperparameters: params,
		IsFitted:        true,
	}
	w.Seal()
	return w, nil
}

// ImportWeights はExportWeightsの結果からモデルを復元する
func (s *SVR) ImportWeights(w *model.ModelWeights) error {
	if w == nil {
		return errors.NewValidationError("weights", "cannot be nil", nil)
	}
	if w.ModelType != modelName {
		return errors.NewValidationError("model_type", "expected "+modelName, w.ModelType)
	}
	if err := w.Validate(); err != nil {
		return err
	}

	kernelName, _ := w.Hyperparameters["kernel"].(string)
	switch kernelName {
	case KernelLinear:
		s.kernel = LinearKernel{}
	case KernelRBF, "":
		kernelName = KernelRBF
		gamma, ok := w.Hyperparameters["gamma_value"].(float64)
		if !ok || gamma <= 0 {
			return errors.NewValidationError("gamma_value", "must be a positive number", w.Hyperparameters["gamma_value"])
		}
		s.kernel = RBFKernel{Gamma: gamma}
		s.gamma = gamma
		s.gammaMode = ""
	default:
		return errors.NewValidationError("kernel", "must be rbf or linear", kernelName)
	}
	s.kernelName = kernelName
	if v, ok := w.Hyperparameters["C"].(float64); ok {
		s.c = v
	}
	if v, ok := w.Hyperparameters["epsilon"].(float64); ok {
		s.epsilon = v
	}

	s.supportVectors = make([][]float64, len(w.SupportVectors))
	for i, sv := range w.SupportVectors {
		s.supportVectors[i] = append([]float64(nil), sv...)
	}
	s.dualCoef = append([]float64(nil), w.DualCoef...)
	s.intercept = w.Intercept
	s.nIter = 0
	s.state.SetFitted(w.NFeatures, 0)
	return nil
}

func (s *SVR) logger() log.Logger {
	return log.GetLoggerWithName("svm").With(log.ModelNameKey, modelName, log.EstimatorIDKey, s.id)
}

// String はモデルの文字列表現を返す
func (s *SVR) String() string {
	gamma := fmt.Sprintf("%v", s.GetParams()["gamma"])
	if !s.state.IsFitted() {
		return fmt.Sprintf("SVR(kernel=%s, C=%g, epsilon=%g, gamma=%s)", s.kernelName, s.c, s.epsilon, gamma)
	}
	return fmt.Sprintf("SVR(kernel=%s, C=%g, epsilon=%g, gamma=%g, n_support=%d)",
		s.kernelName, s.c, s.epsilon, s.Gamma(), len(s.dualCoef))
}
