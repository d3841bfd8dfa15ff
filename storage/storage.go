// Package storage provides interfaces for the local site tree and the remote S3 bucket it is published to.
package storage

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Log implement Logrus logger for debug logging.
var Log = logrus.New()

// Type of Storage.
type Type int

// Storage types.
const (
	TypeS3 Type = iota + 1
)

// Object contain content and metadata of a published file.
//
// Key is the path relative to the site root and is used as the S3 object key unchanged.
type Object struct {
	Key             *string
	Mtime           *time.Time
	Content         *[]byte
	ContentLength   *int64
	ContentType     *string
	ContentEncoding *string
	CacheControl    *string
	Expires         *time.Time
	ACL             *string
}

// Source is a storage objects are listed and read from.
type Source interface {
	WithContext(ctx context.Context)
	List(ch chan<- *Object) error
	GetObjectMeta(obj *Object) error
	GetObjectContent(obj *Object) error
}

// Target is a storage objects are published to.
type Target interface {
	WithContext(ctx context.Context)
	WithRateLimit(limit int) error
	// Prepare is called once per sync before the source is listed.
	Prepare() error
	GetObjectMeta(obj *Object) error
	PutObject(obj *Object) error
}
