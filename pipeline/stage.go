package pipeline

import (
	"fmt"

	"github.com/YuminosukeSato/salesml/pkg/errors"
)

// Stage is the position of a Pipeline in its one-way lifecycle.
type Stage int

const (
	StageUnloaded Stage = iota
	StageLoaded
	StageSplit
	StageScaled
	StageFitted
	StagePredicted
)

func (s Stage) String() string {
	switch s {
	case StageUnloaded:
		return "unloaded"
	case StageLoaded:
		return "loaded"
	case StageSplit:
		return "split"
	case StageScaled:
		return "scaled"
	case StageFitted:
		return "fitted"
	case StagePredicted:
		return "predicted"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// errorStage maps the step that needs a given stage to the stage name used by
// pkg/errors, so out-of-order calls report the step that was attempted.
func (s Stage) errorStage() string {
	switch s {
	case StageUnloaded:
		return errors.StageLoad
	case StageLoaded:
		return errors.StageSplit
	case StageSplit, StageScaled:
		return errors.StageFit
	default:
		return errors.StagePredict
	}
}

// OrderError is returned when a step is called in the wrong stage.
type OrderError struct {
	Op   string
	Want Stage
	Have Stage
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("salesml: pipeline.%s: requires stage %s, pipeline is %s", e.Op, e.Want, e.Have)
}

// Stage implements errors.StageReporter.
func (e *OrderError) Stage() string { return e.Want.errorStage() }

func newOrderError(op string, want, have Stage) error {
	return errors.WithStack(&OrderError{Op: op, Want: want, Have: have})
}
