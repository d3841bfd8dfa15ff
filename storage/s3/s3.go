package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/larrabee/ratelimit"
	"github.com/larrabee/s3publish/storage"
)

// DefaultACL makes published objects readable by everyone.
const DefaultACL = s3.ObjectCannedACLPublicRead

// S3Storage configuration.
type S3Storage struct {
	awsSvc    s3iface.S3API
	awsBucket *string
	region    string
	ctx       context.Context
	rlBucket  ratelimit.Bucket
}

// NewS3Storage return new configured S3 storage.
//
// You should always create new storage with this constructor.
func NewS3Storage(awsAccessKey, awsSecretKey, awsRegion, endpoint, bucketName string) *S3Storage {
	sess := session.Must(session.NewSession())

	sess.Config.S3ForcePathStyle = aws.Bool(true)
	sess.Config.CredentialsChainVerboseErrors = aws.Bool(true)
	sess.Config.Region = aws.String(awsRegion)
	sess.Config.WithCredentials(credentials.NewStaticCredentials(awsAccessKey, awsSecretKey, ""))

	if endpoint != "" {
		sess.Config.Endpoint = aws.String(endpoint)
	}

	return NewS3StorageWithClient(s3.New(sess), awsRegion, bucketName)
}

// NewS3StorageWithClient return S3 storage backed by the given client.
func NewS3StorageWithClient(svc s3iface.S3API, awsRegion, bucketName string) *S3Storage {
	return &S3Storage{
		awsSvc:    svc,
		awsBucket: aws.String(bucketName),
		region:    awsRegion,
		ctx:       context.TODO(),
		rlBucket:  ratelimit.NewFakeBucket(),
	}
}

// BucketFromURL return bucket name from s3://bucket[/path] url.
func BucketFromURL(u string) string {
	name := strings.TrimPrefix(u, "s3://")
	if i := strings.Index(name, "/"); i >= 0 {
		name = name[:i]
	}
	return name
}

// WithContext add's context to storage.
func (st *S3Storage) WithContext(ctx context.Context) {
	st.ctx = ctx
}

// WithRateLimit set rate limit (bytes/sec) for storage.
func (st *S3Storage) WithRateLimit(limit int) error {
	bucket, err := ratelimit.NewBucketWithRate(float64(limit), int64(limit))
	if err != nil {
		return err
	}
	st.rlBucket = bucket
	return nil
}

// Bucket return bucket name.
func (st *S3Storage) Bucket() string {
	return aws.StringValue(st.awsBucket)
}

// Prepare makes sure the bucket exists, creating it when it does not.
func (st *S3Storage) Prepare() error {
	_, err := st.awsSvc.HeadBucketWithContext(st.ctx, &s3.HeadBucketInput{Bucket: st.awsBucket})
	if err == nil {
		storage.Log.Debugf("Bucket %s exists", st.Bucket())
		return nil
	}
	if !storage.IsErrNotExist(err) {
		return fmt.Errorf("head bucket %s: %w", st.Bucket(), err)
	}

	input := &s3.CreateBucketInput{Bucket: st.awsBucket}
	if st.region != "" && st.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(st.region),
		}
	}
	if _, err := st.awsSvc.CreateBucketWithContext(st.ctx, input); err != nil {
		return fmt.Errorf("create bucket %s: %w", st.Bucket(), err)
	}
	storage.Log.Infof("Bucket %s created", st.Bucket())
	return nil
}

// PutObject saves object to S3 replacing existing one, then applies the object ACL.
func (st *S3Storage) PutObject(obj *storage.Object) error {
	objReader := bytes.NewReader(*obj.Content)
	rlReader := ratelimit.NewReadSeeker(objReader, st.rlBucket)

	input := &s3.PutObjectInput{
		Bucket:          st.awsBucket,
		Key:             obj.Key,
		Body:            rlReader,
		ContentLength:   aws.Int64(int64(len(*obj.Content))),
		ContentType:     obj.ContentType,
		ContentEncoding: obj.ContentEncoding,
		CacheControl:    obj.CacheControl,
		Expires:         obj.Expires,
	}

	if _, err := st.awsSvc.PutObjectWithContext(st.ctx, input); err != nil {
		return err
	}

	if obj.ACL == nil {
		return nil
	}
	_, err := st.awsSvc.PutObjectAclWithContext(st.ctx, &s3.PutObjectAclInput{
		Bucket: st.awsBucket,
		Key:    obj.Key,
		ACL:    obj.ACL,
	})
	return err
}

// GetObjectMeta update object metadata from S3.
func (st *S3Storage) GetObjectMeta(obj *storage.Object) error {
	result, err := st.awsSvc.HeadObjectWithContext(st.ctx, &s3.HeadObjectInput{
		Bucket: st.awsBucket,
		Key:    obj.Key,
	})
	if err != nil {
		return err
	}

	obj.ContentType = result.ContentType
	obj.ContentEncoding = result.ContentEncoding
	obj.ContentLength = result.ContentLength
	obj.CacheControl = result.CacheControl
	obj.Mtime = result.LastModified
	return nil
}
