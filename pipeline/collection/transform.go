package collection

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
)

const (
	// DefaultGzipMinSize is the size in bytes a file must exceed to be compressed.
	DefaultGzipMinSize = 1024
	// LongExpiryDays is the cache lifetime of long-expiry content types.
	LongExpiryDays = 100
	// ShortExpiryDays is the cache lifetime of everything else.
	ShortExpiryDays = 0.5

	secondsPerDay = 3600 * 24
)

// DefaultGzipContentTypes are compressed when gzip is enabled.
var DefaultGzipContentTypes = []string{
	"text/html",
	"text/css",
	"application/javascript",
	"application/x-javascript",
	"application/x-font-ttf",
	"application/pdf",
	"image/svg+xml",
}

// DefaultLongExpiryContentTypes get LongExpiryDays cache lifetime.
var DefaultLongExpiryContentTypes = []string{
	"text/css",
	"application/javascript",
	"application/x-javascript",
	"application/x-font-ttf",
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/svg+xml",
}

// GzipConfig is the Config of GzipCompressor step.
type GzipConfig struct {
	MinSize      int64
	ContentTypes []string
}

// ExpiresConfig is the Config of ExpiresUpdater step.
type ExpiresConfig struct {
	LongContentTypes []string
	LongDays         float64
	ShortDays        float64
	// Now is used to compute the Expires instant, time.Now if nil.
	Now func() time.Time
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DetectContentType sets object Content-Type from the key extension. Unknown types are left unset.
var DetectContentType pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	if ct := storage.ContentTypeByExt(*obj.Key); ct != "" {
		obj.ContentType = &ct
	}
	return nil
}

// GzipCompressor compresses object content with the best compression level and sets Content-Encoding.
//
// Only objects larger than GzipConfig.MinSize with a content type from GzipConfig.ContentTypes are compressed.
// This filter read configuration from Step.Config and assert it type to GzipConfig type.
var GzipCompressor pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	info := group.GetStepInfo(stepNum)
	cfg, ok := info.Config.(GzipConfig)
	if !ok {
		return &pipeline.StepConfigurationError{StepName: info.Name, StepNum: stepNum}
	}

	if obj.Content == nil || obj.ContentType == nil {
		return nil
	}
	size := int64(len(*obj.Content))
	if size <= cfg.MinSize || !contains(cfg.ContentTypes, *obj.ContentType) {
		return nil
	}

	data, err := gzipBytes(*obj.Content)
	if err != nil {
		return &pipeline.ObjectError{Object: obj, Err: fmt.Errorf("gzip: %w", err)}
	}
	compressedSize := int64(len(data))
	encoding := "gzip"
	obj.Content = &data
	obj.ContentLength = &compressedSize
	obj.ContentEncoding = &encoding

	pipeline.Log.Debugf("\tgzipped: %s to %s", humanize.Bytes(uint64(size)), humanize.Bytes(uint64(compressedSize)))
	return nil
}

func gzipBytes(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, len(data)/2))
	zw, err := gzip.NewWriterLevel(buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExpiresUpdater sets Expires and Cache-Control of the object.
//
// Both headers derive from the same number of days. Cache-Control max-age is a plain duration
// and does not depend on the moment the Expires instant is computed from.
// This filter read configuration from Step.Config and assert it type to ExpiresConfig type.
var ExpiresUpdater pipeline.StepFn = func(group *pipeline.Group, stepNum int, obj *storage.Object) error {
	info := group.GetStepInfo(stepNum)
	cfg, ok := info.Config.(ExpiresConfig)
	if !ok {
		return &pipeline.StepConfigurationError{StepName: info.Name, StepNum: stepNum}
	}

	days := cfg.ShortDays
	if obj.ContentType != nil && contains(cfg.LongContentTypes, *obj.ContentType) {
		days = cfg.LongDays
	}

	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	expires, cacheControl := expiryHeaders(now(), days)
	obj.Expires = &expires
	obj.CacheControl = &cacheControl

	pipeline.Log.Debugf("\texpires: %s", expires.Format(time.RFC1123))
	pipeline.Log.Debugf("\tcache-control: %s", cacheControl)
	return nil
}

func expiryHeaders(now time.Time, days float64) (time.Time, string) {
	lifetime := time.Duration(days * secondsPerDay * float64(time.Second))
	expires := now.UTC().Add(lifetime).Truncate(time.Second)
	return expires, fmt.Sprintf("max-age=%d", int64(secondsPerDay*days))
}
