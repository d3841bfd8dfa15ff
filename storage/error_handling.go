package storage

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Error codes S3 returns when a create request conflicts with an existing or in-flight resource.
var createConflictCodes = map[string]struct{}{
	s3.ErrCodeBucketAlreadyExists:     {},
	s3.ErrCodeBucketAlreadyOwnedByYou: {},
	"OperationAborted":                {},
}

// IsErrNotExist reports whether err means the object or bucket is missing.
func IsErrNotExist(err error) bool {
	var aErr awserr.Error
	if errors.As(err, &aErr) {
		switch aErr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return true
		}
	}

	var rErr awserr.RequestFailure
	if errors.As(err, &rErr) && rErr.StatusCode() == http.StatusNotFound {
		return true
	}

	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	return false
}

func IsErrPermission(err error) bool {
	var aErr awserr.Error
	if errors.As(err, &aErr) {
		if aErr.Code() == "AccessDenied" {
			return true
		}
	}

	if errors.Is(err, os.ErrPermission) {
		return true
	}
	return false
}

// IsErrCreateConflict reports whether err is a storage-side creation conflict.
// Such failures drop the object from the sync without aborting it.
func IsErrCreateConflict(err error) bool {
	var aErr awserr.Error
	if errors.As(err, &aErr) {
		_, ok := createConflictCodes[aErr.Code()]
		return ok
	}
	return false
}

func IsAwsContextCanceled(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return true
	}

	var aErr awserr.Error
	if ok := errors.As(err, &aErr); ok && aErr.OrigErr() == context.Canceled {
		return true
	} else if ok && aErr.Code() == request.CanceledErrorCode {
		return true
	}

	return false
}
