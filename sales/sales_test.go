package sales

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/salesml/dataset"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/pkg/log"
)

func table(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	tb, err := dataset.LoadReader("bills.csv", strings.NewReader(csv),
		dataset.WithMinColumns(2), dataset.WithEmptyAsZero(true))
	require.NoError(t, err)
	return tb
}

func TestAnalyze(t *testing.T) {
	tb := table(t, `Pen,Notebook,Eraser,Ink
2,1,0,0
1,0,1,0
3,2,0,1
0,1,1,0
1,0,0,1
`)
	s, err := Analyze(tb)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Bills)
	assert.Equal(t, []ItemTotal{
		{"Pen", 7}, {"Notebook", 4}, {"Eraser", 2}, {"Ink", 2},
	}, s.Totals)
	assert.Equal(t, "Pen", s.BestSeller)
	// Eraser and Ink tie; the leftmost wins
	assert.Equal(t, "Eraser", s.WorstSeller)
	assert.Equal(t, []string{"Pen", "Notebook", "Ink"}, s.Remaining)

	// bills 2 and 4 contain an eraser: Pen 1, Notebook 1, Ink 0
	assert.Equal(t, 2, s.CoBills)
	assert.Equal(t, "Pen", s.Suggestion)
}

func TestAnalyze_SuggestionDiffersFromBestSeller(t *testing.T) {
	tb := table(t, `Rice,Dal,Salt
10,0,0
10,0,0
0,3,1
0,2,0
`)
	s, err := Analyze(tb)
	require.NoError(t, err)
	assert.Equal(t, "Rice", s.BestSeller)
	assert.Equal(t, "Salt", s.WorstSeller)
	assert.Equal(t, "Dal", s.Suggestion)
}

func TestAnalyze_NoCoOccurringBills(t *testing.T) {
	tb := table(t, `A,B
1,0
2,0
`)
	_, err := Analyze(tb)
	require.Error(t, err)
	var sugErr *errors.SuggestionError
	require.True(t, errors.As(err, &sugErr))
	assert.Equal(t, "B", sugErr.Item)
	assert.Equal(t, errors.StageSuggest, errors.StageOf(err))
}

func TestAnalyze_SingleColumn(t *testing.T) {
	tb, err := dataset.LoadReader("one.csv", strings.NewReader("A\n1\n"))
	require.NoError(t, err)
	_, err = Analyze(tb)
	assert.Equal(t, errors.StageLoad, errors.StageOf(err))
}

func TestLoad_EmptyCellsAreZero(t *testing.T) {
	var warned []error
	errors.SetZerologWarnFunc(func(w error) { warned = append(warned, w) })
	defer errors.SetZerologWarnFunc(nil)

	path := filepath.Join(t.TempDir(), "DummyBills.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,B,C\n1,,2\n,1,1\n"), 0o600))

	tb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, tb.Column(0))
	assert.Len(t, warned, 1)

	s, err := Analyze(tb)
	require.NoError(t, err)
	assert.Equal(t, "C", s.BestSeller)
	assert.Equal(t, "A", s.WorstSeller)
	assert.Equal(t, "C", s.Suggestion)
}

func TestLoad_RejectsSingleColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.csv")
	require.NoError(t, os.WriteFile(path, []byte("A\n1\n"), 0o600))
	_, err := Load(path)
	var loadErr *errors.DataLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestAnalyze_LogsSuggestion(t *testing.T) {
	p, logger := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(p)
	defer func() { require.NoError(t, log.SetupLoggerWriter(os.Stderr, "warn", "json")) }()

	_, err := Analyze(table(t, "Pen,Notebook,Eraser\n2,1,0\n1,0,1\n0,3,1\n"))
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("Sales analysed"))
	assert.True(t, logger.ContainsField(log.ItemKey, "Eraser"))
	assert.True(t, logger.ContainsField(log.SuggestionKey, "Notebook"))
	assert.True(t, logger.ContainsField(log.SamplesKey, float64(3)))
	assert.True(t, logger.ContainsField(log.ComponentKey, "sales"))
}
