package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/salesml/dataset"
	"github.com/YuminosukeSato/salesml/metrics"
	"github.com/YuminosukeSato/salesml/pipeline"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/sales"
)

func series() PredictionSeries {
	return PredictionSeries{
		Day:        []float64{3, 1, 2, 4},
		Sold:       []float64{30, 10, 22, 41},
		Fitted:     []float64{31, 11, 20, 40},
		QueryDay:   5,
		Prediction: 50,
	}
}

func summary(t *testing.T) *sales.Summary {
	t.Helper()
	tb, err := dataset.LoadReader("bills.csv", strings.NewReader("Pen,Ink,Eraser\n2,1,0\n1,0,1\n3,1,0\n"))
	require.NoError(t, err)
	s, err := sales.Analyze(tb)
	require.NoError(t, err)
	return s
}

func TestWritePredictionPlot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePredictionPlot(&buf, series()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestPredictionPlot_LengthMismatch(t *testing.T) {
	s := series()
	s.Fitted = s.Fitted[:2]
	_, err := PredictionPlot(s)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))

	_, err = PredictionPlot(PredictionSeries{})
	assert.Error(t, err)
}

func TestSavePredictionPlot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svr.png")
	require.NoError(t, SavePredictionPlot(path, series()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, SavePredictionPlot(filepath.Join(dir, "noext"), series()))
}

func TestWriteSalesChart(t *testing.T) {
	s := summary(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSalesChart(&buf, s))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Items sold")
	assert.Contains(t, html, "Pen")

	path := filepath.Join(t.TempDir(), "sales.html")
	require.NoError(t, SaveSalesChart(path, s))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteSales(t *testing.T) {
	s := summary(t)

	var text bytes.Buffer
	require.NoError(t, WriteSales(&text, FormatText, s))
	assert.Equal(t, "[Pen Ink]\nPen\n", text.String())

	var js bytes.Buffer
	require.NoError(t, WriteSales(&js, FormatJSON, s))
	assert.Contains(t, js.String(), `"suggestion": "Pen"`)
	assert.Contains(t, js.String(), `"worst_seller": "Eraser"`)

	assert.Error(t, WriteSales(&js, "xml", s))
}

func TestWritePrediction(t *testing.T) {
	res := &pipeline.Result{
		Prediction: 123.25,
		Query:      pipeline.DefaultQuery,
		Metrics:    metrics.Report{Samples: 2, R2: 0.5},
	}

	var text bytes.Buffer
	require.NoError(t, WritePrediction(&text, FormatText, res))
	assert.Equal(t, "123.25\n", text.String())

	var js bytes.Buffer
	require.NoError(t, WritePrediction(&js, FormatJSON, res))
	assert.Contains(t, js.String(), `"prediction": 123.25`)
	assert.Contains(t, js.String(), `"r2": 0.5`)
	assert.NotContains(t, js.String(), "cv_scores")

	var validation *errors.ValidationError
	assert.True(t, errors.As(WritePrediction(&js, "yaml", res), &validation))
}
