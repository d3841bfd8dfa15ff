// Package pipeline runs one sync pass: objects listed from the source are passed through an ordered list of steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/larrabee/s3publish/storage"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// ErrHandlerFn decides whether a failed object may be dropped.
// It returns true if the sync should continue with the next object.
type ErrHandlerFn func(err error) bool

// RunStats is the outcome of one sync pass.
// Every listed object is counted exactly once, unless the pass was aborted on it.
type RunStats struct {
	Uploaded uint64
	Skipped  uint64
	Dropped  uint64
}

// Group is a pipeline group with source and target storage and the pipeline steps.
type Group struct {
	Source     storage.Source
	Target     storage.Target
	Ctx        context.Context
	ErrHandler ErrHandlerFn
	StartTime  time.Time
	steps      []Step
	stats      RunStats
}

// NewGroup return a new prepared group.
func NewGroup() Group {
	return Group{
		Ctx:   context.Background(),
		steps: make([]Step, 0),
	}
}

// WithContext set context of the group. Cancelling it aborts the sync.
func (group *Group) WithContext(ctx context.Context) {
	group.Ctx = ctx
}

// SetSource set source storage.
func (group *Group) SetSource(st storage.Source) {
	group.Source = st
}

// SetTarget set target storage.
func (group *Group) SetTarget(st storage.Target) {
	group.Target = st
}

// SetErrHandler set the handler of per object errors.
func (group *Group) SetErrHandler(fn ErrHandlerFn) {
	group.ErrHandler = fn
}

// AddPipeStep add a step to the end of the pipeline.
func (group *Group) AddPipeStep(step Step) {
	group.steps = append(group.steps, step)
}

// GetStepsInfo return information about all pipeline steps.
func (group *Group) GetStepsInfo() []StepInfo {
	res := make([]StepInfo, 0, len(group.steps))
	for i := range group.steps {
		res = append(res, group.GetStepInfo(i))
	}
	return res
}

// GetStepInfo return information about step with given number.
func (group *Group) GetStepInfo(stepNum int) StepInfo {
	step := &group.steps[stepNum]
	return StepInfo{
		Stats:  step.load(),
		Name:   step.Name,
		Num:    stepNum,
		Config: step.Config,
	}
}

// Stats return counters of the current or the last sync pass.
func (group *Group) Stats() RunStats {
	return RunStats{
		Uploaded: atomic.LoadUint64(&group.stats.Uploaded),
		Skipped:  atomic.LoadUint64(&group.stats.Skipped),
		Dropped:  atomic.LoadUint64(&group.stats.Dropped),
	}
}

func (group *Group) checkSteps() error {
	for i := range group.steps {
		step := &group.steps[i]
		if step.Fn == nil || (step.Check != nil && !step.Check(step.Config)) {
			return &StepConfigurationError{StepName: step.Name, StepNum: i}
		}
	}
	return nil
}

func (group *Group) reset() {
	atomic.StoreUint64(&group.stats.Uploaded, 0)
	atomic.StoreUint64(&group.stats.Skipped, 0)
	atomic.StoreUint64(&group.stats.Dropped, 0)
	for i := range group.steps {
		group.steps[i].reset()
	}
}

// Run executes one sync pass and return its stats.
//
// The target is prepared first, then the source is listed and every object goes through
// all steps before the next one is taken. The first error not accepted by ErrHandler aborts the pass.
func (group *Group) Run() (RunStats, error) {
	group.reset()
	group.StartTime = time.Now()

	if group.Source == nil {
		return group.Stats(), fmt.Errorf("source storage is nil")
	} else if group.Target == nil {
		return group.Stats(), fmt.Errorf("target storage is nil")
	}
	if err := group.checkSteps(); err != nil {
		return group.Stats(), err
	}

	ctx, cancel := context.WithCancel(group.Ctx)
	defer cancel()
	group.Source.WithContext(ctx)
	group.Target.WithContext(ctx)

	if err := group.Target.Prepare(); err != nil {
		return group.Stats(), fmt.Errorf("prepare target storage: %w", err)
	}

	objChan := make(chan *storage.Object)
	listErrChan := make(chan error, 1)
	go func() {
		listErrChan <- group.Source.List(objChan)
		close(objChan)
	}()

	for obj := range objChan {
		err := group.processObject(obj)
		switch {
		case err == nil:
			atomic.AddUint64(&group.stats.Uploaded, 1)
			continue
		case errors.Is(err, ErrSkipObject):
			atomic.AddUint64(&group.stats.Skipped, 1)
			continue
		case group.ErrHandler != nil && group.ErrHandler(err):
			atomic.AddUint64(&group.stats.Dropped, 1)
			continue
		}

		Log.Debugf("Aborting sync: %s", err)
		cancel()
		for range objChan {
		}
		<-listErrChan
		return group.Stats(), err
	}

	if err := <-listErrChan; err != nil {
		return group.Stats(), fmt.Errorf("list source storage: %w", err)
	}
	Log.Debugf("All pipeline steps finished")
	return group.Stats(), nil
}

func (group *Group) processObject(obj *storage.Object) error {
	for i := range group.steps {
		step := &group.steps[i]
		atomic.AddUint64(&step.stats.Input, 1)
		err := step.Fn(group, i, obj)
		if errors.Is(err, ErrSkipObject) {
			return err
		} else if err != nil {
			atomic.AddUint64(&step.stats.Error, 1)
			return &PipelineError{StepName: step.Name, StepNum: i, Err: err}
		}
		atomic.AddUint64(&step.stats.Output, 1)
	}
	return nil
}
