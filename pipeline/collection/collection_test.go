package collection

import (
	"bytes"
	stdgzip "compress/gzip"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/klauspost/compress/gzip"
	"github.com/larrabee/s3publish/pipeline"
	"github.com/larrabee/s3publish/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTarget struct {
	objects map[string]*storage.Object
	metaErr error
	putErr  error
	puts    []*storage.Object
}

func newMemTarget() *memTarget {
	return &memTarget{objects: make(map[string]*storage.Object)}
}

func (t *memTarget) WithContext(ctx context.Context) {}
func (t *memTarget) WithRateLimit(limit int) error   { return nil }
func (t *memTarget) Prepare() error                  { return nil }

func (t *memTarget) GetObjectMeta(obj *storage.Object) error {
	if t.metaErr != nil {
		return t.metaErr
	}
	remote, ok := t.objects[*obj.Key]
	if !ok {
		return awserr.New("NotFound", "Not Found", nil)
	}
	obj.Mtime = remote.Mtime
	return nil
}

func (t *memTarget) PutObject(obj *storage.Object) error {
	if t.putErr != nil {
		return t.putErr
	}
	t.puts = append(t.puts, obj)
	return nil
}

func stepGroup(target storage.Target, steps ...pipeline.Step) *pipeline.Group {
	group := pipeline.NewGroup()
	group.SetTarget(target)
	for _, s := range steps {
		group.AddPipeStep(s)
	}
	return &group
}

func newObject(key string, content []byte, mtime time.Time) *storage.Object {
	size := int64(len(content))
	return &storage.Object{Key: &key, Content: &content, ContentLength: &size, Mtime: &mtime}
}

func gunzip(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return out
}

func TestFilterObjectsModified(t *testing.T) {
	remoteTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	target := newMemTarget()
	target.objects["index.html"] = &storage.Object{Mtime: &remoteTime}
	group := stepGroup(target, pipeline.Step{Name: "FilterObjectsModified", Fn: FilterObjectsModified})

	tests := []struct {
		name    string
		key     string
		mtime   time.Time
		wantErr error
	}{
		{"missing remote", "new.html", remoteTime.Add(-time.Hour), nil},
		{"local older", "index.html", remoteTime.Add(-time.Second), pipeline.ErrSkipObject},
		{"equal", "index.html", remoteTime, nil},
		{"equal in other zone", "index.html", remoteTime.In(time.FixedZone("UTC+3", 3*3600)), nil},
		{"local newer", "index.html", remoteTime.Add(time.Second), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FilterObjectsModified(group, 0, newObject(tt.key, nil, tt.mtime))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestFilterObjectsModifiedMetaError(t *testing.T) {
	target := newMemTarget()
	target.metaErr = awserr.New("AccessDenied", "Access Denied", nil)
	group := stepGroup(target, pipeline.Step{Name: "FilterObjectsModified", Fn: FilterObjectsModified})

	err := FilterObjectsModified(group, 0, newObject("a.css", nil, time.Now()))
	var objErr *pipeline.ObjectError
	require.True(t, errors.As(err, &objErr))
	assert.Equal(t, "a.css", *objErr.Object.Key)
	assert.True(t, storage.IsErrPermission(err))
}

func TestDetectContentType(t *testing.T) {
	obj := newObject("index.html", nil, time.Now())
	require.NoError(t, DetectContentType(nil, 0, obj))
	assert.Equal(t, "text/html", *obj.ContentType)

	obj = newObject("blob", nil, time.Now())
	require.NoError(t, DetectContentType(nil, 0, obj))
	assert.Nil(t, obj.ContentType)
}

func TestGzipCompressor(t *testing.T) {
	cfg := GzipConfig{MinSize: DefaultGzipMinSize, ContentTypes: DefaultGzipContentTypes}
	group := stepGroup(newMemTarget(), pipeline.Step{Name: "Gzip", Fn: GzipCompressor, Config: cfg})

	tests := []struct {
		name     string
		key      string
		size     int
		wantGzip bool
	}{
		{"large html", "index.html", 2000, true},
		{"large unknown type", "blob", 2000, false},
		{"large png", "logo.png", 2000, false},
		{"html at threshold", "small.html", 1024, false},
		{"html above threshold", "page.html", 1025, true},
		{"large svg", "img/icon.svg", 4096, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte(strings.Repeat("a", tt.size))
			obj := newObject(tt.key, content, time.Now())
			require.NoError(t, DetectContentType(group, 0, obj))
			require.NoError(t, GzipCompressor(group, 0, obj))

			if !tt.wantGzip {
				assert.Nil(t, obj.ContentEncoding)
				assert.Equal(t, content, *obj.Content)
				return
			}
			require.NotNil(t, obj.ContentEncoding)
			assert.Equal(t, "gzip", *obj.ContentEncoding)
			assert.Equal(t, int64(len(*obj.Content)), *obj.ContentLength)
			assert.Less(t, len(*obj.Content), tt.size)
			assert.Equal(t, content, gunzip(t, *obj.Content))
		})
	}
}

func TestGzipBytesBestCompression(t *testing.T) {
	plain := []byte(strings.Repeat("<p>hello</p>", 200))
	data, err := gzipBytes(plain)
	require.NoError(t, err)

	// XFL is 2 for the slowest, best compression level.
	require.Greater(t, len(data), 10)
	assert.Equal(t, byte(2), data[8])

	// Browsers decode with any RFC 1952 reader.
	zr, err := stdgzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestGzipCompressorBadConfig(t *testing.T) {
	group := stepGroup(newMemTarget(), pipeline.Step{Name: "Gzip", Fn: GzipCompressor, Config: "gzip"})
	err := GzipCompressor(group, 0, newObject("index.html", []byte("x"), time.Now()))
	var confErr *pipeline.StepConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestExpiresUpdater(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := ExpiresConfig{
		LongContentTypes: DefaultLongExpiryContentTypes,
		LongDays:         LongExpiryDays,
		ShortDays:        ShortExpiryDays,
		Now:              func() time.Time { return now },
	}
	group := stepGroup(newMemTarget(), pipeline.Step{Name: "Expires", Fn: ExpiresUpdater, Config: cfg})

	tests := []struct {
		name             string
		key              string
		wantLifetime     time.Duration
		wantCacheControl string
	}{
		{"long expiry css", "css/a.css", 100 * 24 * time.Hour, "max-age=8640000"},
		{"long expiry png", "img/a.png", 100 * 24 * time.Hour, "max-age=8640000"},
		{"short expiry html", "index.html", 12 * time.Hour, "max-age=43200"},
		{"short expiry unknown", "blob", 12 * time.Hour, "max-age=43200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := newObject(tt.key, nil, now)
			require.NoError(t, DetectContentType(group, 0, obj))
			require.NoError(t, ExpiresUpdater(group, 0, obj))

			assert.Equal(t, now.Add(tt.wantLifetime), *obj.Expires)
			assert.Equal(t, tt.wantCacheControl, *obj.CacheControl)
			// max-age and Expires come from the same number of days
			assert.Equal(t, tt.wantLifetime, obj.Expires.Sub(now))
		})
	}
}

func TestExpiryHeadersMaxAgeIndependentOfNow(t *testing.T) {
	_, first := expiryHeaders(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), ShortExpiryDays)
	_, second := expiryHeaders(time.Date(2030, 7, 15, 13, 45, 10, 0, time.UTC), ShortExpiryDays)
	assert.Equal(t, first, second)
}

func TestACLUpdater(t *testing.T) {
	group := stepGroup(newMemTarget(), pipeline.Step{Name: "ACL", Fn: ACLUpdater, Config: "public-read"})
	obj := newObject("a", nil, time.Now())
	require.NoError(t, ACLUpdater(group, 0, obj))
	assert.Equal(t, "public-read", *obj.ACL)
}

func TestUploadObjectData(t *testing.T) {
	target := newMemTarget()
	group := stepGroup(target, pipeline.Step{Name: "Upload", Fn: UploadObjectData})

	obj := newObject("a.html", []byte("x"), time.Now())
	require.NoError(t, UploadObjectData(group, 0, obj))
	require.Len(t, target.puts, 1)
	assert.Same(t, obj, target.puts[0])

	target.putErr = awserr.New("BucketAlreadyExists", "exists", nil)
	err := UploadObjectData(group, 0, obj)
	var objErr *pipeline.ObjectError
	require.True(t, errors.As(err, &objErr))
	assert.True(t, storage.IsErrCreateConflict(err))
}

func TestNewRateLimit(t *testing.T) {
	fn, err := NewRateLimit(1000)
	require.NoError(t, err)
	assert.NoError(t, fn(nil, 0, newObject("a", nil, time.Now())))
}
