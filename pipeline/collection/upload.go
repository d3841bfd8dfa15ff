package collection

import (
	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
)

// UploadObjectData writes the object to the target storage.
var UploadObjectData pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	pipeline.Log.Debugf("Uploading %s...", *obj.Key)
	if err := group.Target.PutObject(obj); err != nil {
		return &pipeline.ObjectError{Object: obj, Err: err}
	}
	return nil
}
