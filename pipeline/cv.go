package pipeline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/core/model"
	"github.com/YuminosukeSato/salesml/pkg/log"
	"github.com/YuminosukeSato/salesml/preprocessing"
	"github.com/YuminosukeSato/salesml/sklearn/model_selection"
	"github.com/YuminosukeSato/salesml/sklearn/svm"
)

// scaledSVR fits a StandardScaler on its own training rows before the SVR,
// so no statistics leak from a validation fold.
type scaledSVR struct {
	scaler *preprocessing.StandardScaler
	svr    *svm.SVR
}

var _ model.Regressor = (*scaledSVR)(nil)

func (m *scaledSVR) Fit(X, y mat.Matrix) error {
	xs, err := m.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	return m.svr.Fit(xs, y)
}

func (m *scaledSVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	xs, err := m.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return m.svr.Predict(xs)
}

func (m *scaledSVR) Score(X, y mat.Matrix) (float64, error) {
	xs, err := m.scaler.Transform(X)
	if err != nil {
		return 0, err
	}
	return m.svr.Score(xs, y)
}

func (m *scaledSVR) IsFitted() bool {
	return m.scaler.IsFitted() && m.svr.IsFitted()
}

// CrossValidate runs shuffled k-fold cross-validation over the training split
// and returns the R² of each fold. The pipeline stage does not change.
func (p *Pipeline) CrossValidate() ([]float64, error) {
	if p.stage < StageSplit {
		return nil, newOrderError("CrossValidate", StageSplit, p.stage)
	}

	newModel := func() model.Regressor { return svm.NewSVR(p.opt.svrOptions()...) }
	if p.opt.Scaling == ScalingStandard {
		newModel = func() model.Regressor {
			return &scaledSVR{
				scaler: preprocessing.NewStandardScaler(),
				svr:    svm.NewSVR(p.opt.svrOptions()...),
			}
		}
	}

	cv := model_selection.NewKFold(p.opt.CVFolds, true, p.opt.Seed)
	scores, err := model_selection.CrossValScore(newModel, p.split.XTrain, p.split.YTrain, cv)
	if err != nil {
		return nil, err
	}

	for k, s := range scores {
		p.logger.Debug("Cross-validation fold", log.FoldKey, k, log.R2ScoreKey, s)
	}
	p.logger.Info("Cross-validation completed",
		"cv.folds", len(scores),
		log.R2ScoreKey, mean(scores),
	)
	return scores, nil
}
