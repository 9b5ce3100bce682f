// Package metrics provides regression metrics for evaluating predictions.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/salesml/pkg/errors"
)

func checkPair(op string, yTrue, yPred mat.Vector) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// ErrZeroVariance はyTrueの全変動が0でR²が定義できない場合のエラー
var ErrZeroVariance = errors.New("total sum of squares is zero (no variance in yTrue)")

// R2Score は決定係数（R²）を計算する。yTrueが定数の場合はErrZeroVarianceを返す
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yt := make([]float64, n)
	for i := range yt {
		yt[i] = yTrue.AtVec(i)
	}
	yMean := stat.Mean(yt, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i, v := range yt {
		tss += (v - yMean) * (v - yMean)
		d := v - yPred.AtVec(i)
		rss += d * d
	}
	if tss == 0 {
		return 0, errors.Wrap(ErrZeroVariance, "R2Score")
	}
	return 1 - rss/tss, nil
}

// Report はホールドアウト評価の結果
type Report struct {
	Samples int     `json:"samples"`
	MSE     float64 `json:"mse"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
	R2      float64 `json:"r2"`
}

// Evaluate は全ての回帰指標をまとめて計算する。
// R²が定義できない場合はUndefinedMetricWarningを出し、残差が0なら1、そうでなければ0とする
func Evaluate(yTrue, yPred mat.Vector) (Report, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}

	r2, err := R2Score(yTrue, yPred)
	if errors.Is(err, ErrZeroVariance) {
		r2 = 0
		if mse == 0 {
			r2 = 1
		}
		errors.Warn(errors.NewUndefinedMetricWarning("r2", "constant yTrue", r2))
	} else if err != nil {
		return Report{}, err
	}

	return Report{
		Samples: yTrue.Len(),
		MSE:     mse,
		RMSE:    math.Sqrt(mse),
		MAE:     mae,
		R2:      r2,
	}, nil
}

// ColumnVector は n×1 の予測結果行列をベクトルとして返す
func ColumnVector(m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if c != 1 {
		return nil, errors.NewValueError("ColumnVector", "must be a column vector (n×1 matrix)")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}
