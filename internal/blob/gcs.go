package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/vytor/brainyflash/internal/logger"
)

// GCSStore keeps objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore creates a store on bucket using application default credentials.
// baseURL defaults to the public storage.googleapis.com URL of the bucket.
func NewGCSStore(ctx context.Context, bucket, baseURL string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, baseURL: baseURL}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("blob_gcs").WithField("key", key)
	log.Debug("uploading object: content_type=%s", contentType)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		log.Error("failed to write object: %v", err)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		log.Error("failed to close object writer: %v", err)
		return "", fmt.Errorf("close object writer: %w", err)
	}
	return publicURL(s.baseURL, key), nil
}

func (s *GCSStore) Delete(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		return ErrForeignURL
	}
	log := logger.FromContext(ctx).WithPrefix("blob_gcs").WithField("key", key)

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		log.Debug("object already gone")
		return nil
	}
	if err != nil {
		log.Error("failed to delete object: %v", err)
		return err
	}
	log.Debug("object deleted")
	return nil
}

func (s *GCSStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL(s.baseURL, url)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
