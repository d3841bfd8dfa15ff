package storage

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
)

func TestContentTypeByExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"index.html", "text/html"},
		{"css/a.css", "text/css"},
		{"js/app.JS", "application/javascript"},
		{"img/logo.svg", "image/svg+xml"},
		{"photo.jpeg", "image/jpeg"},
		{"fonts/font.ttf", "application/x-font-ttf"},
		{"blob", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentTypeByExt(tt.name))
		})
	}
}

func TestIsErrNotExist(t *testing.T) {
	assert.True(t, IsErrNotExist(awserr.New("NotFound", "not found", nil)))
	assert.True(t, IsErrNotExist(awserr.New(s3.ErrCodeNoSuchBucket, "no bucket", nil)))
	assert.True(t, IsErrNotExist(awserr.NewRequestFailure(awserr.New("Unknown", "", nil), 404, "req")))
	assert.True(t, IsErrNotExist(fmt.Errorf("stat: %w", os.ErrNotExist)))
	assert.False(t, IsErrNotExist(awserr.New("AccessDenied", "denied", nil)))
	assert.False(t, IsErrNotExist(errors.New("boom")))
}

func TestIsErrCreateConflict(t *testing.T) {
	assert.True(t, IsErrCreateConflict(awserr.New(s3.ErrCodeBucketAlreadyExists, "exists", nil)))
	assert.True(t, IsErrCreateConflict(fmt.Errorf("upload: %w", awserr.New(s3.ErrCodeBucketAlreadyOwnedByYou, "owned", nil))))
	assert.True(t, IsErrCreateConflict(awserr.New("OperationAborted", "conflicting operation", nil)))
	assert.False(t, IsErrCreateConflict(awserr.New("InternalError", "oops", nil)))
	assert.False(t, IsErrCreateConflict(errors.New("boom")))
}

func TestIsErrPermission(t *testing.T) {
	assert.True(t, IsErrPermission(awserr.New("AccessDenied", "denied", nil)))
	assert.True(t, IsErrPermission(fmt.Errorf("open: %w", os.ErrPermission)))
	assert.False(t, IsErrPermission(errors.New("boom")))
}
