// Package collection contains different StepFn functions to do different pipeline actions.
package collection

import (
	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
)

// LoadObjectMeta accepts an input object and loads its size and modification time from the source.
var LoadObjectMeta pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	if err := group.Source.GetObjectMeta(obj); err != nil {
		return &pipeline.ObjectError{Object: obj, Err: err}
	}
	return nil
}

// LoadObjectData accepts an input object and reads its content from the source.
var LoadObjectData pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	if err := group.Source.GetObjectContent(obj); err != nil {
		return &pipeline.ObjectError{Object: obj, Err: err}
	}
	return nil
}
