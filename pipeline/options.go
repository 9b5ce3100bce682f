package pipeline

import (
	"strings"

	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/sklearn/svm"
)

// ScalingMode selects how features are scaled before fitting.
type ScalingMode string

const (
	// ScalingStandard fits a StandardScaler on the training features only and
	// applies it to the train set, the test set and the query point.
	ScalingStandard ScalingMode = "standard"
	// ScalingNone fits on the raw features.
	ScalingNone ScalingMode = "none"
	// ScalingLegacy reproduces the historical script: a throwaway fit on the
	// standardized target, then a refit on the unscaled training split.
	ScalingLegacy ScalingMode = "legacy"
)

// ParseScalingMode converts a CLI or config-file value into a ScalingMode.
// The empty string selects ScalingStandard.
func ParseScalingMode(s string) (ScalingMode, error) {
	switch m := ScalingMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ScalingStandard, ScalingNone, ScalingLegacy:
		return m, nil
	case "":
		return ScalingStandard, nil
	default:
		return "", errors.NewValidationError("scaling", "must be standard, none or legacy", s)
	}
}

// DefaultQuery is the future point the pipeline predicts by default.
var DefaultQuery = []float64{9700, 1017, 469, 0}

// Options configures a Pipeline.
type Options struct {
	InputPath string
	// NFeatures leading columns are features, the last column is the target.
	NFeatures int
	TestSize  float64
	Seed      uint64
	Scaling   ScalingMode
	Query     []float64

	// SVR hyperparameters. Gamma <= 0 means GammaMode is used.
	C         float64
	Epsilon   float64
	Gamma     float64
	GammaMode string
	MaxIter   int

	// CVFolds > 1 enables k-fold cross-validation on the training split.
	CVFolds int
}

// NewDefaultOptions returns the options of the reference run.
func NewDefaultOptions() *Options {
	return &Options{
		InputPath: "data/Data1.csv",
		NFeatures: 4,
		TestSize:  0.2,
		Seed:      0,
		Scaling:   ScalingStandard,
		Query:     append([]float64(nil), DefaultQuery...),
		C:         1.0,
		Epsilon:   0.1,
		GammaMode: svm.GammaScale,
		MaxIter:   -1,
	}
}

// Validate checks the options that do not depend on the data.
func (o *Options) Validate() error {
	if o.NFeatures < 1 {
		return errors.NewValidationError("n_features", "must be positive", o.NFeatures)
	}
	if !(o.TestSize > 0 && o.TestSize < 1) {
		return errors.NewSplitError(0, o.TestSize, "test_size must be in (0, 1)")
	}
	if _, err := ParseScalingMode(string(o.Scaling)); err != nil {
		return err
	}
	if len(o.Query) != o.NFeatures {
		return errors.NewValidationError("query", "must have one value per feature", o.Query)
	}
	if o.CVFolds == 1 || o.CVFolds < 0 {
		return errors.NewValidationError("cv", "must be 0 (disabled) or at least 2", o.CVFolds)
	}
	return nil
}

func (o *Options) svrOptions() []svm.SVROption {
	opts := []svm.SVROption{
		svm.WithC(o.C),
		svm.WithEpsilon(o.Epsilon),
		svm.WithMaxIter(o.MaxIter),
	}
	if o.Gamma > 0 {
		opts = append(opts, svm.WithGamma(o.Gamma))
	} else {
		opts = append(opts, svm.WithGammaMode(o.GammaMode))
	}
	return opts
}
