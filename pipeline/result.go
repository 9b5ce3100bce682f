package pipeline

import (
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/salesml/metrics"
)

// Result is the outcome of a complete Run.
type Result struct {
	RunID      string         `json:"run_id"`
	InputPath  string         `json:"input_path"`
	Scaling    ScalingMode    `json:"scaling"`
	Model      string         `json:"model"`
	Query      []float64      `json:"query"`
	Prediction float64        `json:"prediction"`
	TrainSize  int            `json:"train_size"`
	TestSize   int            `json:"test_size"`
	NSupport   int            `json:"n_support"`
	Metrics    metrics.Report `json:"metrics"`
	CVScores   []float64      `json:"cv_scores,omitempty"`
	CVMean     float64        `json:"cv_mean,omitempty"`
}

func mean(xs []float64) float64 {
	return stat.Mean(xs, nil)
}
