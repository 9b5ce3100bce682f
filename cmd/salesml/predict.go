package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salesml/core/model"
	"github.com/YuminosukeSato/salesml/internal/config"
	"github.com/YuminosukeSato/salesml/pipeline"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/pkg/log"
	"github.com/YuminosukeSato/salesml/report"
)

func newPredictCmd(a *app) *cobra.Command {
	def := config.Default()
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fit the SVR on the sales dataset and print the future prediction",
		Example: `  salesml predict
  salesml predict --input-path data/Data1.csv --scaling none --query 9700,1017,469,0
  salesml predict --cv 5 --output json --plot-out svr.png --export-model svr.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.predict(cmd)
		},
	}

	f := cmd.Flags()
	f.String("input-path", def.InputPath, "CSV dataset: 4 feature columns then the target (.xz accepted)")
	f.Float64("test-size", def.TestSize, "fraction of rows held out for evaluation")
	f.Uint64("seed", def.Seed, "random seed of the train/test split")
	f.String("scaling", def.Scaling, "feature scaling: standard, none or legacy")
	f.StringSlice("query", []string{"9700", "1017", "469", "0"}, "feature values of the point to predict")
	f.Float64("C", def.C, "SVR regularization parameter")
	f.Float64("epsilon", def.Epsilon, "SVR epsilon-tube width")
	f.Float64("gamma", def.Gamma, "RBF gamma; 0 uses --gamma-mode")
	f.String("gamma-mode", def.GammaMode, "RBF gamma rule when --gamma is 0: scale or auto")
	f.Int("max-iter", def.MaxIter, "SMO iteration cap, -1 for automatic")
	f.Int("cv", def.CVFolds, "k-fold cross-validation folds on the training split, 0 to disable")
	f.String("plot-out", def.PlotOut, "write the day vs sold plot to this file (.png, .svg, .pdf)")
	f.String("export-model", def.ExportModel, "write the fitted model weights as JSON (.xz compresses)")
	f.StringP("output", "o", def.Output, "output format: text or json")
	return cmd
}

func (a *app) predict(cmd *cobra.Command) error {
	cfg := a.cfg
	if cfg.Output != report.FormatText && cfg.Output != report.FormatJSON {
		return errors.NewValidationError("output", "must be text or json", cfg.Output)
	}
	opt, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}
	p, err := pipeline.New(opt)
	if err != nil {
		return err
	}
	res, err := p.Run()
	if err != nil {
		return err
	}

	logger := log.GetLoggerWithName("cli").With(log.RunIDKey, res.RunID)
	if cfg.PlotOut != "" {
		if err := savePlot(p, opt, res, cfg.PlotOut); err != nil {
			return err
		}
		logger.Info("Plot written", log.PathKey, cfg.PlotOut)
	}
	if cfg.ExportModel != "" {
		w, err := p.Weights()
		if err != nil {
			return err
		}
		if err := model.SaveWeights(w, cfg.ExportModel); err != nil {
			return err
		}
		logger.Info("Model exported", log.PathKey, cfg.ExportModel)
	}

	return report.WritePrediction(cmd.OutOrStdout(), cfg.Output, res)
}

func savePlot(p *pipeline.Pipeline, opt *pipeline.Options, res *pipeline.Result, path string) error {
	fitted, err := p.FittedValues()
	if err != nil {
		return err
	}
	table := p.Table()
	_, cols := table.Dims()
	return report.SavePredictionPlot(path, report.PredictionSeries{
		Day:        table.Column(0),
		Sold:       table.Column(cols - 1),
		Fitted:     fitted,
		QueryDay:   opt.Query[0],
		Prediction: res.Prediction,
	})
}
