// Package report renders pipeline and sales results as text, JSON, PNG plots
// and HTML charts.
package report

import (
	"image/color"
	"io"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/salesml/pkg/errors"
)

// PredictionSeries is the data behind the "day vs sold" plot.
type PredictionSeries struct {
	// Day is the first feature column, Sold the target, Fitted the model
	// output for each row.
	Day    []float64
	Sold   []float64
	Fitted []float64

	// QueryDay and Prediction mark the future point.
	QueryDay   float64
	Prediction float64
}

func (s PredictionSeries) validate() error {
	if len(s.Day) == 0 {
		return errors.NewValueError("PredictionPlot", "no rows to plot")
	}
	if len(s.Sold) != len(s.Day) || len(s.Fitted) != len(s.Day) {
		return errors.NewValueError("PredictionPlot", "day, sold and fitted must have the same length")
	}
	return nil
}

// PredictionPlot builds a scatter of Sold against Day, the model curve and the
// future prediction.
func PredictionPlot(s PredictionSeries) (*plot.Plot, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "day vs sold"
	p.X.Label.Text = "day"
	p.Y.Label.Text = "sold items"

	actual := make(plotter.XYs, len(s.Day))
	curve := make(plotter.XYs, len(s.Day))
	for i := range s.Day {
		actual[i].X, actual[i].Y = s.Day[i], s.Sold[i]
		curve[i].X, curve[i].Y = s.Day[i], s.Fitted[i]
	}
	sort.Slice(curve, func(i, j int) bool { return curve[i].X < curve[j].X })

	scatter, err := plotter.NewScatter(actual)
	if err != nil {
		return nil, errors.Wrap(err, "scatter")
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(2.5)

	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, errors.Wrap(err, "fitted line")
	}
	line.LineStyle.Color = color.RGBA{G: 160, A: 255}
	line.LineStyle.Width = vg.Points(1.5)

	future, err := plotter.NewScatter(plotter.XYs{{X: s.QueryDay, Y: s.Prediction}})
	if err != nil {
		return nil, errors.Wrap(err, "prediction point")
	}
	future.GlyphStyle.Color = color.RGBA{B: 200, A: 255}
	future.GlyphStyle.Shape = draw.CrossGlyph{}
	future.GlyphStyle.Radius = vg.Points(5)

	p.Add(plotter.NewGrid(), scatter, line, future)
	p.Legend.Add("sold", scatter)
	p.Legend.Add("SVR", line)
	p.Legend.Add("prediction", future)
	p.Legend.Top = true
	return p, nil
}

// WritePredictionPlot renders the plot as PNG to w.
func WritePredictionPlot(w io.Writer, s PredictionSeries) error {
	p, err := PredictionPlot(s)
	if err != nil {
		return err
	}
	return errors.SafeExecute("WritePredictionPlot", func() error {
		wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
		if err != nil {
			return errors.Wrap(err, "render plot")
		}
		_, err = wt.WriteTo(w)
		return err
	})
}

// SavePredictionPlot saves the plot to path. The format follows the file
// extension (png, svg, pdf, ...).
func SavePredictionPlot(path string, s PredictionSeries) error {
	if filepath.Ext(path) == "" {
		return errors.NewValueError("SavePredictionPlot", "output path needs an extension such as .png")
	}
	p, err := PredictionPlot(s)
	if err != nil {
		return err
	}
	return errors.SafeExecute("SavePredictionPlot", func() error {
		if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
			return errors.Wrapf(err, "save plot %s", path)
		}
		return nil
	})
}
