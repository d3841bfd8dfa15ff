package collection

import (
	"github.com/larrabee/ratelimit"
	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
	"github.com/sirupsen/logrus"
)

// Logger print object name with the logger passed in Step.Config.
var Logger pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	info := group.GetStepInfo(stepNum)
	cfg, ok := info.Config.(*logrus.Logger)
	if !ok {
		return &pipeline.StepConfigurationError{StepName: info.Name, StepNum: stepNum}
	}
	cfg.Infof("Key: %s", *obj.Key)
	return nil
}

// ACLUpdater set object ACL.
// This filter read configuration from Step.Config and assert it type to string type.
var ACLUpdater pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	info := group.GetStepInfo(stepNum)
	cfg, ok := info.Config.(string)
	if !ok {
		return &pipeline.StepConfigurationError{StepName: info.Name, StepNum: stepNum}
	}
	obj.ACL = &cfg
	return nil
}

// NewRateLimit return a step which slow down pipeline processing speed to given rate (obj/sec).
func NewRateLimit(rate uint) (pipeline.StepFn, error) {
	bucket, err := ratelimit.NewBucketWithRate(float64(rate), int64(rate*2))
	if err != nil {
		return nil, err
	}
	return func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
		bucket.Wait(1)
		return nil
	}, nil
}
