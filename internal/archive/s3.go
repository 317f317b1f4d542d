package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store writes objects to an S3-compatible bucket (MinIO, Ceph, AWS).
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates a client for bucket at endpoint using static credentials.
func NewS3Store(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, Error.New("failed to create S3 client for %s: %v", endpoint, err)
	}
	return &S3Store{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return Error.Wrap(err)
	}
	if exists {
		return nil
	}
	return Error.Wrap(s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}))
}

// Put uploads body to the bucket under key.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, opts.Size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	})
	if err != nil {
		return Error.New("failed to upload %s: %v", key, err)
	}
	return nil
}

// Location returns the s3:// URL of key.
func (s *S3Store) Location(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

// Close is a no-op; the minio client holds no long-lived resources.
func (s *S3Store) Close() error { return nil }
