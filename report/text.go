package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/YuminosukeSato/salesml/pipeline"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/sales"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSalesText prints the items other than the worst seller on one line and
// the suggestion on the next.
func WriteSalesText(w io.Writer, s *sales.Summary) error {
	_, err := fmt.Fprintf(w, "[%s]\n%s\n", strings.Join(s.Remaining, " "), s.Suggestion)
	return err
}

// WriteSales writes s in the given format.
func WriteSales(w io.Writer, format string, s *sales.Summary) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatText, "":
		return WriteSalesText(w, s)
	default:
		return errors.NewValidationError("output", "must be text or json", format)
	}
}

// WritePrediction writes a pipeline result. The text format is the predicted
// value alone on one line.
func WritePrediction(w io.Writer, format string, res *pipeline.Result) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatText, "":
		_, err := fmt.Fprintln(w, strconv.FormatFloat(res.Prediction, 'f', -1, 64))
		return err
	default:
		return errors.NewValidationError("output", "must be text or json", format)
	}
}
