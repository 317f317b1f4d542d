package archive

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes objects to a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a client for bucket. keyFile is a service account key;
// when empty, application default credentials are used.
func NewGCSStore(ctx context.Context, bucket, keyFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if keyFile != "" {
		if _, err := os.Stat(keyFile); err != nil {
			return nil, Error.New("service account key not found at path %s: %v", keyFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(keyFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, Error.New("failed to create GCS storage client: %v", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put streams body into gs://bucket/key.
func (s *GCSStore) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.CacheControl = opts.CacheControl

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return Error.New("failed to copy to GCS object %s: %v", key, err)
	}
	if err := w.Close(); err != nil {
		return Error.New("failed to close GCS writer for %s: %v", key, err)
	}
	return nil
}

// Location returns the gs:// URL of key.
func (s *GCSStore) Location(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, key)
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
