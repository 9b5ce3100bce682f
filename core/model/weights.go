package model

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goccy/go-json"

	"github.com/YuminosukeSato/salesml/pkg/errors"
)

// WeightsVersion はModelWeightsのフォーマットバージョン
const WeightsVersion = "1.0.0"

// ModelWeights はモデルの学習結果を表す構造体（シリアライゼーション用）
type ModelWeights struct {
	// ModelType はモデルの種類（SVR等）
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// NFeatures は学習時の特徴量数
	NFeatures int `json:"n_features"`

	// SupportVectors はサポートベクター（行ごと）。全データがepsilon-tube内なら空
	SupportVectors [][]float64 `json:"support_vectors"`

	// DualCoef はサポートベクターごとの双対係数
	DualCoef []float64 `json:"dual_coef"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は特徴量の名前（オプション）
	Features []string `json:"features,omitempty"`

	// Scaler は学習時に使われた標準化パラメータ（スケーリングなしの場合nil）
	Scaler *ScalerWeights `json:"scaler,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Checksum はSupportVectors・DualCoef・InterceptのSHA-256
	Checksum string `json:"checksum"`

	IsFitted bool `json:"is_fitted"`
}

// ScalerWeights はStandardScalerの学習結果
type ScalerWeights struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type checksumPayload struct {
	SupportVectors [][]float64 `json:"sv"`
	DualCoef       []float64   `json:"dc"`
	Intercept      float64     `json:"b"`
}

// ComputeChecksum は学習済みパラメータのチェックサムを計算する
func (mw *ModelWeights) ComputeChecksum() string {
	data, _ := json.Marshal(checksumPayload{
		SupportVectors: mw.SupportVectors,
		DualCoef:       mw.DualCoef,
		Intercept:      mw.Intercept,
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Seal はチェックサムを設定する
func (mw *ModelWeights) Seal() {
	mw.Checksum = mw.ComputeChecksum()
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "decode model weights")
	}
	return nil
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}
	if mw.Version != WeightsVersion {
		return errors.NewValidationError("version", "unsupported weights version", mw.Version)
	}
	if !mw.IsFitted {
		return errors.NewValidationError("is_fitted", "weights of an unfitted model cannot be imported", mw.IsFitted)
	}
	if mw.NFeatures <= 0 {
		return errors.NewValidationError("n_features", "must be positive", mw.NFeatures)
	}
	if len(mw.SupportVectors) != len(mw.DualCoef) {
		return errors.NewValidationError("support_vectors",
			"must match dual_coef in length", len(mw.SupportVectors))
	}
	nFeatures := mw.NFeatures
	for _, sv := range mw.SupportVectors {
		if len(sv) != nFeatures {
			return errors.NewValidationError("support_vectors", "rows must have n_features entries", len(sv))
		}
	}
	if mw.Scaler != nil && (len(mw.Scaler.Mean) != nFeatures || len(mw.Scaler.Scale) != nFeatures) {
		return errors.NewValidationError("scaler", "mean/scale length must match features", nFeatures)
	}
	if mw.Checksum != "" && mw.Checksum != mw.ComputeChecksum() {
		return errors.NewValidationError("checksum", "mismatch, weights may be corrupted", mw.Checksum)
	}
	return nil
}
