package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/sales"
)

// SalesChart builds a bar chart of the item totals. The subtitle names the
// best and worst sellers and the suggestion.
func SalesChart(s *sales.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Items sold",
				Subtitle: fmt.Sprintf("best: %s, worst: %s, suggested with %s: %s",
					s.BestSeller, s.WorstSeller, s.WorstSeller, s.Suggestion),
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]string, len(s.Totals))
	data := make([]opts.BarData, len(s.Totals))
	for i, it := range s.Totals {
		items[i] = it.Item
		data[i] = opts.BarData{Name: it.Item, Value: it.Total}
	}
	bar.SetXAxis(items).AddSeries("total", data)
	return bar
}

// WriteSalesChart renders the chart as a standalone HTML page.
func WriteSalesChart(w io.Writer, s *sales.Summary) error {
	return SalesChart(s).Render(w)
}

// SaveSalesChart writes the chart to path.
func SaveSalesChart(path string, s *sales.Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create chart %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteSalesChart(f, s)
}
