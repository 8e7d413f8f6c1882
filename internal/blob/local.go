package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vytor/brainyflash/internal/logger"
)

// LocalStore keeps objects under a directory on disk, served at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

// Dir is the root directory objects are written under.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("blob_local").WithField("key", key)
	log.Debug("writing object: content_type=%s", contentType)

	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		log.Error("failed to create file: %v", err)
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		log.Error("failed to write file: %v", err)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return publicURL(s.baseURL, key), nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	key, ok := s.KeyFromURL(url)
	if !ok {
		return ErrForeignURL
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("blob_local").Error("failed to remove %s: %v", key, err)
	}
	return err
}

func (s *LocalStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL(s.baseURL, url)
}

func (s *LocalStore) path(key string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}
