// Package preprocessing provides feature scaling for the regression pipeline.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/salesml/core/model"
	"github.com/YuminosukeSato/salesml/pkg/errors"
)

// 標準偏差がこれ未満の列はスケール1として扱う（ゼロ除算を避ける）
const minScale = 1e-8

var _ model.Transformer = (*StandardScaler)(nil)

// StandardScaler はscikit-learn互換の標準化スケーラー
// 各特徴量を平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	withMean bool
	withStd  bool

	mean  []float64
	scale []float64
}

// ScalerOption はStandardScalerの設定オプション
type ScalerOption func(*StandardScaler)

// WithMean は平均を引くかどうかを設定する (デフォルト: true)
func WithMean(enabled bool) ScalerOption {
	return func(s *StandardScaler) { s.withMean = enabled }
}

// WithStd は標準偏差で割るかどうかを設定する (デフォルト: true)
func WithStd(enabled bool) ScalerOption {
	return func(s *StandardScaler) { s.withStd = enabled }
}

// NewStandardScaler は新しいStandardScalerを作成する
//
//	scaler := preprocessing.NewStandardScaler()
//	XTrainScaled, err := scaler.FitTransform(XTrain)
//	XTestScaled, err := scaler.Transform(XTest)
func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{
		state:    model.NewStateManager("StandardScaler"),
		withMean: true,
		withStd:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit は訓練データから列ごとの平均と母標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckMatrix("StandardScaler.Fit", X, 0); err != nil {
		return err
	}

	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		m, std := stat.PopMeanStdDev(col, nil)
		if s.withMean {
			mean[j] = m
		}
		scale[j] = 1.0
		if s.withStd && std >= minScale {
			scale[j] = std
		}
	}

	s.mean = mean
	s.scale = scale
	s.state.SetFitted(c, r)
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.check(X, "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, X)
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.check(X, "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return v*s.scale[j] + s.mean[j]
	}, X)
	return result, nil
}

func (s *StandardScaler) check(X mat.Matrix, method string) error {
	if err := s.state.RequireFitted(method); err != nil {
		return err
	}
	_, c := X.Dims()
	return s.state.RequireFeatures("StandardScaler."+method, c)
}

// IsFitted はスケーラーが学習済みかどうかを返す
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// Mean は各特徴量の平均値のコピーを返す
func (s *StandardScaler) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}

// Scale は各特徴量の標準偏差のコピーを返す
func (s *StandardScaler) Scale() []float64 {
	return append([]float64(nil), s.scale...)
}

// ExportWeights は学習済みパラメータを返す
func (s *StandardScaler) ExportWeights() (*model.ScalerWeights, error) {
	if err := s.state.RequireFitted("ExportWeights"); err != nil {
		return nil, err
	}
	return &model.ScalerWeights{Mean: s.Mean(), Scale: s.Scale()}, nil
}

// ImportWeights はExportWeightsで得たパラメータを復元する
func (s *StandardScaler) ImportWeights(w *model.ScalerWeights) error {
	if w == nil || len(w.Mean) == 0 || len(w.Mean) != len(w.Scale) {
		return errors.NewValidationError("scaler", "mean and scale must be non-empty and of equal length", w)
	}
	for j, sc := range w.Scale {
		if sc <= 0 || math.IsNaN(sc) || math.IsInf(sc, 0) {
			return errors.NewValidationError("scaler.scale", fmt.Sprintf("entry %d must be positive and finite", j), sc)
		}
	}
	s.mean = append([]float64(nil), w.Mean...)
	s.scale = append([]float64(nil), w.Scale...)
	s.state.SetFitted(len(w.Mean), 0)
	return nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	nFeatures, _ := s.state.Dimensions()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, nFeatures)
}
