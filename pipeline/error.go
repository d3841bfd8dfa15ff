package pipeline

import (
	"errors"
	"fmt"

	"github.com/larrabee/s3publish/storage"
)

// ErrSkipObject is returned by a step to stop processing an object which does not need syncing.
// Skipped objects are counted in RunStats.Skipped.
var ErrSkipObject = errors.New("skip object")

// PipelineError wraps an error returned by a step.
type PipelineError struct {
	StepName string
	StepNum  int
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline step: %d (%s) failed with error: %s", e.StepNum, e.StepName, e.Err.Error())
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// StepConfigurationError is returned when step Config has unexpected type.
type StepConfigurationError struct {
	StepName string
	StepNum  int
}

func (e *StepConfigurationError) Error() string {
	return fmt.Sprintf("pipeline step: %d (%s) invalid configuration passed", e.StepNum, e.StepName)
}

// ObjectError contain the object on which the error occurred.
type ObjectError struct {
	Object *storage.Object
	Err    error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("object: %s sync error: %s", *e.Object.Key, e.Err.Error())
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}
