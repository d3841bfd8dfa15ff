package main

import (
	"errors"

	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
)

// handleObjectError drops objects which failed with a storage create conflict.
// Any other error aborts the sync.
func handleObjectError(err error) bool {
	var objErr *pipeline.ObjectError
	hasObj := errors.As(err, &objErr) && objErr.Object != nil && objErr.Object.Key != nil

	if !storage.IsErrCreateConflict(err) {
		if storage.IsErrPermission(err) {
			if hasObj {
				log.Errorf("Permission denied for object %s: %s, check AWS keys and bucket policy", *objErr.Object.Key, objErr.Err)
			} else {
				log.Errorf("Permission denied: %s, check AWS keys and bucket policy", err)
			}
		}
		return false
	}

	if hasObj {
		log.Warnf("Failed: %s, object %s dropped", objErr.Err, *objErr.Object.Key)
	} else {
		log.Warnf("Failed: %s", err)
	}
	return true
}
