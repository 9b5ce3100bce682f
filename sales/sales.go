// Package sales analyses per-bill item quantities: item totals, the best and
// worst sellers, and the item most often bought together with the worst seller.
package sales

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/dataset"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/pkg/log"
)

// ItemTotal is the quantity of one item summed over the bills.
type ItemTotal struct {
	Item  string  `json:"item"`
	Total float64 `json:"total"`
}

// Summary is the result of Analyze.
type Summary struct {
	Source string      `json:"source"`
	Bills  int         `json:"bills"`
	Totals []ItemTotal `json:"totals"`

	BestSeller  string `json:"best_seller"`
	WorstSeller string `json:"worst_seller"`

	// Remaining lists every item except the worst seller, in column order.
	Remaining []string `json:"remaining"`

	// CoBills is the number of bills that contain the worst seller.
	CoBills    int    `json:"co_bills"`
	Suggestion string `json:"suggestion"`
}

// Load reads a sales table: a header of item names and one row of
// quantities per bill. Empty cells count as 0.
func Load(path string) (*dataset.Table, error) {
	return dataset.Load(path, dataset.WithMinColumns(2), dataset.WithEmptyAsZero(true))
}

// Totals sums every item column.
func Totals(t *dataset.Table) []ItemTotal {
	header := t.Header()
	totals := make([]ItemTotal, len(header))
	for j, item := range header {
		totals[j] = ItemTotal{Item: item, Total: floats.Sum(t.Column(j))}
	}
	return totals
}

// Analyze computes the Summary for t. Ties for best or worst seller resolve
// to the leftmost column. It returns a SuggestionError when no bill contains
// the worst seller.
func Analyze(t *dataset.Table) (*Summary, error) {
	rows, cols := t.Dims()
	if cols < 2 {
		return nil, errors.NewDataLoadError(t.Path(), "a sales table needs at least 2 item columns", nil)
	}
	header := t.Header()
	totals := Totals(t)
	sums := make([]float64, cols)
	for j, it := range totals {
		sums[j] = it.Total
	}

	best := floats.MaxIdx(sums)
	worst := floats.MinIdx(sums)

	s := &Summary{
		Source:      t.Path(),
		Bills:       rows,
		Totals:      totals,
		BestSeller:  header[best],
		WorstSeller: header[worst],
	}
	for j, item := range header {
		if j != worst {
			s.Remaining = append(s.Remaining, item)
		}
	}

	// Sum the other items over the bills where the worst seller was sold.
	co := mat.NewVecDense(cols, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		if t.At(i, worst) <= 0 {
			continue
		}
		s.CoBills++
		for j := range row {
			row[j] = t.At(i, j)
		}
		co.AddVec(co, mat.NewVecDense(cols, row))
	}
	if s.CoBills == 0 {
		return nil, errors.NewSuggestionError(s.WorstSeller, "no bill contains the worst-selling item")
	}

	coSums := make([]float64, 0, cols-1)
	coItems := make([]string, 0, cols-1)
	for j := 0; j < cols; j++ {
		if j == worst {
			continue
		}
		coSums = append(coSums, co.AtVec(j))
		coItems = append(coItems, header[j])
	}
	s.Suggestion = coItems[floats.MaxIdx(coSums)]

	log.GetLoggerWithName("sales").Info("Sales analysed",
		log.StageKey, errors.StageSuggest,
		log.PathKey, s.Source,
		log.SamplesKey, rows,
		log.ItemKey, s.WorstSeller,
		log.SuggestionKey, s.Suggestion,
	)
	return s, nil
}
