// Package dataset loads numeric CSV tables into gonum matrices.
//
// The first row is a header naming the columns. Every following row must hold
// one numeric value per column. Files ending in ".xz" are decompressed on the fly.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/pkg/log"
)

// Table is an immutable numeric table with named columns.
type Table struct {
	path   string
	header []string
	data   *mat.Dense
}

type options struct {
	minColumns  int
	emptyAsZero bool
}

// Option configures Load and LoadReader.
type Option func(*options)

// WithMinColumns rejects tables with fewer than n columns.
func WithMinColumns(n int) Option {
	return func(o *options) { o.minColumns = n }
}

// WithEmptyAsZero reads empty cells as 0 instead of rejecting them.
// A DataConversionWarning is emitted once per table when it happens.
func WithEmptyAsZero(enabled bool) Option {
	return func(o *options) { o.emptyAsZero = enabled }
}

// Load reads the CSV file at path.
func Load(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataLoadError(path, "cannot open file", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.NewDataLoadError(path, "invalid xz stream", err)
		}
		r = xr
	}
	return LoadReader(path, r, opts...)
}

// LoadReader reads a CSV table from r. name is used in errors and logs.
func LoadReader(name string, r io.Reader, opts ...Option) (*Table, error) {
	o := options{minColumns: 1}
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewDataLoadError(name, "file is empty", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.NewDataLoadError(name, "malformed header", err)
	}
	if len(header) < o.minColumns {
		return nil, errors.NewDataLoadError(name,
			fmt.Sprintf("expected at least %d columns, got %d", o.minColumns, len(header)), nil)
	}

	cols := len(header)
	var values []float64
	rows := 0
	converted := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError carries the line number
			return nil, errors.NewDataLoadError(name, "malformed row", err)
		}
		rows++
		for j, field := range record {
			field = strings.TrimSpace(field)
			if field == "" && o.emptyAsZero {
				values = append(values, 0)
				converted++
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.NewDataLoadError(name,
					fmt.Sprintf("row %d column %q: non-numeric value %q", rows, header[j], field),
					errors.ErrNonNumeric)
			}
			values = append(values, v)
		}
	}
	if rows == 0 {
		return nil, errors.NewDataLoadError(name, "no data rows", errors.ErrEmptyData)
	}
	if converted > 0 {
		errors.Warn(errors.NewDataConversionWarning("empty", "float64",
			fmt.Sprintf("%d empty cells in %s read as 0", converted, name)))
	}

	log.GetLoggerWithName("dataset").Debug("Table loaded",
		log.PathKey, name,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
	)

	names := make([]string, cols)
	for j, h := range header {
		names[j] = strings.TrimSpace(h)
	}
	return &Table{path: name, header: names, data: mat.NewDense(rows, cols, values)}, nil
}

// Path returns the name the table was loaded from.
func (t *Table) Path() string { return t.path }

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Dims returns the number of data rows and columns.
func (t *Table) Dims() (rows, cols int) { return t.data.Dims() }

// At returns the value at row i, column j.
func (t *Table) At(i, j int) float64 { return t.data.At(i, j) }

// Column returns a copy of column j.
func (t *Table) Column(j int) []float64 {
	rows, _ := t.data.Dims()
	return mat.Col(make([]float64, rows), j, t.data)
}

// XY returns the first nFeatures columns as the feature matrix and the last
// column as the target. Both are copies aligned by row.
func (t *Table) XY(nFeatures int) (*mat.Dense, *mat.VecDense, error) {
	rows, cols := t.data.Dims()
	if nFeatures < 1 || nFeatures >= cols {
		return nil, nil, errors.NewDataLoadError(t.path,
			fmt.Sprintf("cannot take %d feature columns and a target from %d columns", nFeatures, cols), nil)
	}
	X := mat.DenseCopyOf(t.data.Slice(0, rows, 0, nFeatures))
	y := mat.NewVecDense(rows, t.Column(cols-1))
	return X, y, nil
}
