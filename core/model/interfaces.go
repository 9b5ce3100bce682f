package model

import (
	"gonum.org/v1/gonum/mat"
)

// Regressor は学習・予測・R²スコアを提供する回帰モデル。
// X は (n_samples, n_features)、y は (n_samples, 1) の行列として渡す。
type Regressor interface {
	// Fit は以前の学習結果を全て置き換える
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
	Score(X, y mat.Matrix) (float64, error)
	IsFitted() bool
}

// Transformer は特徴量のスケーリングなど、学習済みの統計量で行列を変換する。
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// WeightExporter is implemented by models whose fitted state round-trips
// through ModelWeights.
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
	ImportWeights(weights *ModelWeights) error
}
