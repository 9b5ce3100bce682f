// Package pipeline runs the sales regression end to end:
// load → split → scale → fit → predict, then evaluates the hold-out split.
//
// Each step moves the Pipeline one stage forward and refuses to run from any
// other stage, so a failed step halts the run.
//
//	p, err := pipeline.New(pipeline.NewDefaultOptions())
//	if err != nil { ... }
//	res, err := p.Run()
//	fmt.Println(res.Prediction)
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/core/model"
	"github.com/YuminosukeSato/salesml/dataset"
	"github.com/YuminosukeSato/salesml/metrics"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/pkg/log"
	"github.com/YuminosukeSato/salesml/preprocessing"
	"github.com/YuminosukeSato/salesml/sklearn/model_selection"
	"github.com/YuminosukeSato/salesml/sklearn/svm"
)

// Pipeline holds the state of one regression run.
type Pipeline struct {
	opt    Options
	runID  string
	stage  Stage
	logger log.Logger

	table *dataset.Table
	X     *mat.Dense
	y     *mat.VecDense
	split *model_selection.Split

	scaler *preprocessing.StandardScaler
	xTrain mat.Matrix
	xTest  mat.Matrix

	model      *svm.SVR
	prediction float64
}

// New validates opt and returns an unloaded Pipeline.
func New(opt *Options) (*Pipeline, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	o := *opt
	o.Query = append([]float64(nil), opt.Query...)
	o.Scaling, _ = ParseScalingMode(string(opt.Scaling))

	runID := uuid.NewString()
	return &Pipeline{
		opt:    o,
		runID:  runID,
		logger: log.GetLoggerWithName("pipeline").With(log.RunIDKey, runID),
		model:  svm.NewSVR(o.svrOptions()...),
	}, nil
}

// RunID identifies this run in logs and results.
func (p *Pipeline) RunID() string { return p.runID }

// Stage returns the current stage.
func (p *Pipeline) Stage() Stage { return p.stage }

// Model returns the estimator. It is fitted once the pipeline reaches StageFitted.
func (p *Pipeline) Model() *svm.SVR { return p.model }

// Table returns the loaded dataset, or nil before Load.
func (p *Pipeline) Table() *dataset.Table { return p.table }

// SplitResult returns the train/test split, or nil before Split.
func (p *Pipeline) SplitResult() *model_selection.Split { return p.split }

func (p *Pipeline) require(op string, want Stage) error {
	if p.stage != want {
		return newOrderError(op, want, p.stage)
	}
	return nil
}

// Load reads Options.InputPath. The table must have at least NFeatures+1 columns.
func (p *Pipeline) Load() error {
	if err := p.require("Load", StageUnloaded); err != nil {
		return err
	}
	table, err := dataset.Load(p.opt.InputPath, dataset.WithMinColumns(p.opt.NFeatures+1))
	if err != nil {
		return err
	}
	return p.LoadTable(table)
}

// LoadTable uses an already loaded table instead of reading Options.InputPath.
func (p *Pipeline) LoadTable(table *dataset.Table) error {
	if err := p.require("Load", StageUnloaded); err != nil {
		return err
	}
	X, y, err := table.XY(p.opt.NFeatures)
	if err != nil {
		return err
	}
	p.table, p.X, p.y = table, X, y
	p.stage = StageLoaded

	rows, cols := table.Dims()
	p.logger.Info("Dataset loaded",
		log.StageKey, p.stage.String(),
		log.PathKey, table.Path(),
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
	)
	return nil
}

// Split partitions the rows with Options.TestSize and Options.Seed.
func (p *Pipeline) Split() error {
	if err := p.require("Split", StageLoaded); err != nil {
		return err
	}
	s, err := model_selection.TrainTestSplit(p.X, p.y, p.opt.TestSize, p.opt.Seed)
	if err != nil {
		return err
	}
	p.split = s
	p.stage = StageSplit

	p.logger.Info("Train/test split",
		log.StageKey, p.stage.String(),
		log.TrainKey, len(s.TrainIndex),
		log.TestKey, len(s.TestIndex),
		log.RandomSeedKey, p.opt.Seed,
	)
	return nil
}

// Scale prepares the model inputs according to Options.Scaling.
func (p *Pipeline) Scale() error {
	if err := p.require("Scale", StageSplit); err != nil {
		return err
	}

	switch p.opt.Scaling {
	case ScalingStandard:
		scaler := preprocessing.NewStandardScaler()
		xTrain, err := scaler.FitTransform(p.split.XTrain)
		if err != nil {
			return errors.NewFitError("StandardScaler", "cannot scale training features", err)
		}
		xTest, err := scaler.Transform(p.split.XTest)
		if err != nil {
			return errors.NewFitError("StandardScaler", "cannot scale test features", err)
		}
		p.scaler, p.xTrain, p.xTest = scaler, xTrain, xTest
	case ScalingLegacy:
		if err := p.legacyFit(); err != nil {
			return err
		}
		p.xTrain, p.xTest = p.split.XTrain, p.split.XTest
	default:
		p.xTrain, p.xTest = p.split.XTrain, p.split.XTest
	}
	p.stage = StageScaled

	p.logger.Debug("Features prepared",
		log.StageKey, p.stage.String(),
		log.ScalingKey, string(p.opt.Scaling),
	)
	return nil
}

// legacyFit fits the model on the standardized target used as a one-column
// feature matrix over the whole dataset. Fit replaces the result.
func (p *Pipeline) legacyFit() error {
	rows := p.y.Len()
	yCol := mat.NewDense(rows, 1, nil)
	yCol.SetCol(0, p.y.RawVector().Data)

	yScaled, err := preprocessing.NewStandardScaler().FitTransform(yCol)
	if err != nil {
		return errors.NewFitError("StandardScaler", "cannot scale target", err)
	}
	if err := p.model.Fit(yScaled, p.y); err != nil {
		return err
	}
	p.logger.Warn("Legacy scaling: first fit on the standardized target is discarded",
		log.SamplesKey, rows,
	)
	return nil
}

// Fit trains the SVR on the (scaled) training split.
func (p *Pipeline) Fit() error {
	if err := p.require("Fit", StageScaled); err != nil {
		return err
	}
	start := time.Now()
	if err := p.model.Fit(p.xTrain, p.split.YTrain); err != nil {
		return err
	}
	p.stage = StageFitted

	p.logger.Info("Model fitted",
		log.StageKey, p.stage.String(),
		log.ModelNameKey, p.model.String(),
		log.SupportVectorsKey, len(p.model.DualCoef()),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns the model's prediction for Options.Query.
func (p *Pipeline) Predict() (float64, error) {
	if err := p.require("Predict", StageFitted); err != nil {
		return 0, err
	}
	q, err := p.transformRows(mat.NewDense(1, len(p.opt.Query), append([]float64(nil), p.opt.Query...)))
	if err != nil {
		return 0, err
	}
	pred, err := p.model.Predict(q)
	if err != nil {
		return 0, err
	}
	p.prediction = pred.At(0, 0)
	p.stage = StagePredicted

	p.logger.Info("Future prediction",
		log.StageKey, p.stage.String(),
		log.QueryKey, p.opt.Query,
		log.PredictionKey, p.prediction,
	)
	return p.prediction, nil
}

// transformRows applies the fitted scaler to raw feature rows.
func (p *Pipeline) transformRows(X mat.Matrix) (mat.Matrix, error) {
	if p.scaler == nil {
		return X, nil
	}
	out, err := p.scaler.Transform(X)
	if err != nil {
		return nil, errors.NewPredictError("StandardScaler", "cannot scale query", err)
	}
	return out, nil
}

// Evaluate scores the fitted model on the test split.
func (p *Pipeline) Evaluate() (metrics.Report, error) {
	if p.stage < StageFitted {
		return metrics.Report{}, newOrderError("Evaluate", StageFitted, p.stage)
	}
	pred, err := p.model.Predict(p.xTest)
	if err != nil {
		return metrics.Report{}, err
	}
	yPred, err := metrics.ColumnVector(pred)
	if err != nil {
		return metrics.Report{}, err
	}
	report, err := metrics.Evaluate(p.split.YTest, yPred)
	if err != nil {
		return metrics.Report{}, errors.Wrap(err, "evaluate hold-out split")
	}

	p.logger.Info("Hold-out evaluation",
		log.SamplesKey, report.Samples,
		log.R2ScoreKey, report.R2,
		log.RMSEKey, report.RMSE,
	)
	return report, nil
}

// FittedValues predicts every dataset row, in file order.
func (p *Pipeline) FittedValues() ([]float64, error) {
	if p.stage < StageFitted {
		return nil, newOrderError("FittedValues", StageFitted, p.stage)
	}
	X, err := p.transformRows(p.X)
	if err != nil {
		return nil, err
	}
	pred, err := p.model.Predict(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, pred), nil
}

// Weights exports the fitted model together with the feature names and,
// for standard scaling, the scaler statistics.
func (p *Pipeline) Weights() (*model.ModelWeights, error) {
	if p.stage < StageFitted {
		return nil, newOrderError("Weights", StageFitted, p.stage)
	}
	w, err := p.model.ExportWeights()
	if err != nil {
		return nil, err
	}
	w.Features = p.table.Header()[:p.opt.NFeatures]
	if p.scaler != nil {
		sw, err := p.scaler.ExportWeights()
		if err != nil {
			return nil, err
		}
		w.Scaler = sw
	}
	w.Hyperparameters["scaling"] = string(p.opt.Scaling)
	return w, nil
}

// Run executes every step in order and collects the result. Cross-validation
// runs after the split when Options.CVFolds > 1.
func (p *Pipeline) Run() (res *Result, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			p.logger.Error("Pipeline failed",
				log.ErrorKey, err,
				log.StageKey, p.stage.String(),
			)
		}
	}()

	if p.table == nil {
		if err := p.Load(); err != nil {
			return nil, err
		}
	}
	if err := p.Split(); err != nil {
		return nil, err
	}

	var cvScores []float64
	if p.opt.CVFolds > 1 {
		if cvScores, err = p.CrossValidate(); err != nil {
			return nil, err
		}
	}

	if err := p.Scale(); err != nil {
		return nil, err
	}
	if err := p.Fit(); err != nil {
		return nil, err
	}
	prediction, err := p.Predict()
	if err != nil {
		return nil, err
	}
	report, err := p.Evaluate()
	if err != nil {
		return nil, err
	}

	res = &Result{
		RunID:      p.runID,
		InputPath:  p.table.Path(),
		Scaling:    p.opt.Scaling,
		Model:      p.model.String(),
		Query:      append([]float64(nil), p.opt.Query...),
		Prediction: prediction,
		TrainSize:  len(p.split.TrainIndex),
		TestSize:   len(p.split.TestIndex),
		Metrics:    report,
		CVScores:   cvScores,
		NSupport:   len(p.model.DualCoef()),
	}
	if len(cvScores) > 0 {
		res.CVMean = mean(cvScores)
	}

	p.logger.Info("Pipeline completed",
		log.PredictionKey, prediction,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// String summarises the pipeline state.
func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(run=%s, stage=%s, scaling=%s)", p.runID, p.stage, p.opt.Scaling)
}
