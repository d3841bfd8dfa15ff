package pipeline

import (
	"sync/atomic"

	"github.com/larrabee/s3publish/storage"
)

// StepFn implement the type of pipeline Step function.
//
// It is called once per object, in listing order. Returning ErrSkipObject stops processing
// of the object and counts it as skipped; any other error is handed to the Group error handler.
type StepFn func(group *Group, stepNum int, obj *storage.Object) error

// StepCheckFn validates the step Config before the sync is started.
type StepCheckFn func(config interface{}) bool

// Step contain configuration of pipeline step and it's internal structure.
// Be careful with Config interface! Check of its type should implemented in Check.
// If typing fails, Run returns a StepConfigurationError before any object is processed.
type Step struct {
	Name   string
	Fn     StepFn
	Check  StepCheckFn
	Config interface{}
	stats  StepStats
}

// StepStats to keep basic step statistics.
type StepStats struct {
	Input  uint64
	Output uint64
	Error  uint64
}

// StepInfo is used to represent step information, statistic and the step configuration interface.
type StepInfo struct {
	Stats  StepStats
	Name   string
	Num    int
	Config interface{}
}

func (s *Step) load() StepStats {
	return StepStats{
		Input:  atomic.LoadUint64(&s.stats.Input),
		Output: atomic.LoadUint64(&s.stats.Output),
		Error:  atomic.LoadUint64(&s.stats.Error),
	}
}

func (s *Step) reset() {
	atomic.StoreUint64(&s.stats.Input, 0)
	atomic.StoreUint64(&s.stats.Output, 0)
	atomic.StoreUint64(&s.stats.Error, 0)
}

// ConfigIs return a StepCheckFn accepting Config of type T.
func ConfigIs[T any]() StepCheckFn {
	return func(config interface{}) bool {
		_, ok := config.(T)
		return ok
	}
}
