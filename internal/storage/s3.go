package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var _ Storage = (*S3Storage)(nil)

// NewS3Client builds a client from the default credential chain. A non-empty
// endpoint points the client at an S3-compatible server (MinIO, LocalStack)
// using path-style addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Storage keeps post bodies as objects in a single bucket.
type S3Storage struct {
	api    *s3.Client
	bucket string
}

func NewS3Storage(client *s3.Client, bucket string) *S3Storage {
	return &S3Storage{api: client, bucket: bucket}
}

func (s *S3Storage) object(key string) (*string, *string) {
	return aws.String(s.bucket), aws.String(key)
}

func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	bucket, k := s.object(key)
	in := &s3.PutObjectInput{Bucket: bucket, Key: k, Body: body}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Download returns ErrNotFound when the key does not exist. The caller closes
// the body.
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket, k := s.object(key)
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: k})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out.Body, nil
}

// Delete is idempotent: S3 reports success for a missing key.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	bucket, k := s.object(key)
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: bucket, Key: k}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	bucket, k := s.object(key)
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: bucket, Key: k})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("head %s: %w", key, err)
	}
}

// Ping checks that the bucket is reachable with the current credentials.
func (s *S3Storage) Ping(ctx context.Context) error {
	if _, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
