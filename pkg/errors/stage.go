package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Pipeline stage names reported by stage errors.
const (
	StageLoad    = "load"
	StageSplit   = "split"
	StageFit     = "fit"
	StagePredict = "predict"
	StageSuggest = "suggest"
)

// StageReporter is implemented by errors that belong to a pipeline stage.
type StageReporter interface {
	error
	Stage() string
}

// StageOf returns the stage of the first stage error in err's chain, or "" if there is none.
func StageOf(err error) string {
	var sr StageReporter
	if errors.As(err, &sr) {
		return sr.Stage()
	}
	return ""
}

// DataLoadError は入力ファイルが存在しない・読めない・形式が不正な場合のエラーです。
type DataLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("salesml: load %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("salesml: load %q: %s", e.Path, e.Reason)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Stage implements StageReporter.
func (e *DataLoadError) Stage() string { return StageLoad }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DataLoadError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", StageLoad).
		Str("path", e.Path).
		Str("reason", e.Reason).
		Str("type", "DataLoadError")
}

// NewDataLoadError は新しいDataLoadErrorを作成し、スタックトレースを付与します。
func NewDataLoadError(path, reason string, cause error) error {
	return errors.WithStack(&DataLoadError{Path: path, Reason: reason, Err: cause})
}

// SplitError は訓練・テストの両方に行を割り当てられない場合のエラーです。
type SplitError struct {
	Rows     int
	TestSize float64
	Reason   string
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("salesml: split %d rows (test_size=%g): %s", e.Rows, e.TestSize, e.Reason)
}

// Stage implements StageReporter.
func (e *SplitError) Stage() string { return StageSplit }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SplitError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", StageSplit).
		Int("rows", e.Rows).
		Float64("test_size", e.TestSize).
		Str("reason", e.Reason).
		Str("type", "SplitError")
}

// NewSplitError は新しいSplitErrorを作成し、スタックトレースを付与します。
func NewSplitError(rows int, testSize float64, reason string) error {
	return errors.WithStack(&SplitError{Rows: rows, TestSize: testSize, Reason: reason})
}

// FitError はソルバーが失敗した、または不正な入力を受け取った場合のエラーです。
type FitError struct {
	Model  string
	Reason string
	Err    error
}

func (e *FitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("salesml: fit %s: %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("salesml: fit %s: %s", e.Model, e.Reason)
}

func (e *FitError) Unwrap() error { return e.Err }

// Stage implements StageReporter.
func (e *FitError) Stage() string { return StageFit }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *FitError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", StageFit).
		Str("model_name", e.Model).
		Str("reason", e.Reason).
		Str("type", "FitError")
}

// NewFitError は新しいFitErrorを作成し、スタックトレースを付与します。
func NewFitError(model, reason string, cause error) error {
	return errors.WithStack(&FitError{Model: model, Reason: reason, Err: cause})
}

// PredictError は予測対象の次元が学習済みモデルと一致しない場合などのエラーです。
type PredictError struct {
	Model  string
	Reason string
	Err    error
}

func (e *PredictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("salesml: predict %s: %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("salesml: predict %s: %s", e.Model, e.Reason)
}

func (e *PredictError) Unwrap() error { return e.Err }

// Stage implements StageReporter.
func (e *PredictError) Stage() string { return StagePredict }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PredictError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", StagePredict).
		Str("model_name", e.Model).
		Str("reason", e.Reason).
		Str("type", "PredictError")
}

// NewPredictError は新しいPredictErrorを作成し、スタックトレースを付与します。
func NewPredictError(model, reason string, cause error) error {
	return errors.WithStack(&PredictError{Model: model, Reason: reason, Err: cause})
}

// SuggestionError is returned when no companion item can be derived from the sales table.
type SuggestionError struct {
	Item   string
	Reason string
}

func (e *SuggestionError) Error() string {
	return fmt.Sprintf("salesml: suggest for %q: %s", e.Item, e.Reason)
}

// Stage implements StageReporter.
func (e *SuggestionError) Stage() string { return StageSuggest }

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SuggestionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", StageSuggest).
		Str("item", e.Item).
		Str("reason", e.Reason).
		Str("type", "SuggestionError")
}

// NewSuggestionError creates a SuggestionError with a stack trace attached.
func NewSuggestionError(item, reason string) error {
	return errors.WithStack(&SuggestionError{Item: item, Reason: reason})
}
