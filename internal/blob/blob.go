// Package blob stores uploaded files and hands back public URLs for them.
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrForeignURL = errors.New("url does not belong to this store")

// Store is the blob store used for flashcard images and uploaded documents.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes the object behind url. Missing objects are not an error.
	Delete(ctx context.Context, url string) error
	// KeyFromURL maps a URL produced by Put back to its key.
	KeyFromURL(url string) (string, bool)
}

func keyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
