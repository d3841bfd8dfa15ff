package collection

import (
	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
)

// FilterObjectsModified skips objects whose local copy is older than the object in the target.
//
// Objects missing in the target, or with a modification time equal to or after the target one, are passed.
// Modification time of the input object should be loaded with LoadObjectMeta.
var FilterObjectsModified pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	destObj := &storage.Object{Key: obj.Key}
	err := group.Target.GetObjectMeta(destObj)
	if storage.IsErrNotExist(err) {
		return nil
	} else if err != nil {
		return &pipeline.ObjectError{Object: obj, Err: err}
	}

	if obj.Mtime == nil || destObj.Mtime == nil {
		return nil
	}
	if obj.Mtime.UTC().Before(destObj.Mtime.UTC()) {
		pipeline.Log.Debugf("File %s hasn't been modified since last being uploaded", *obj.Key)
		return pipeline.ErrSkipObject
	}
	return nil
}
