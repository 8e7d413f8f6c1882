package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/vytor/brainyflash/internal/blob"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
)

// UploadKind selects the allowed content types and the key prefix of an upload.
type UploadKind string

const (
	UploadImage    UploadKind = "images"
	UploadDocument UploadKind = "documents"
)

var uploadTypes = map[UploadKind]map[string]string{
	UploadImage: {
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/gif":  "gif",
		"image/webp": "webp",
	},
	UploadDocument: {
		"application/pdf": "pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
		"text/plain": "txt",
	},
}

// UploadService stores user files in the blob store
type UploadService interface {
	Upload(ctx context.Context, userID string, kind UploadKind, contentType string, size int64, r io.Reader) (*models.UploadResult, error)
	// DeleteUpload removes a file the caller uploaded earlier.
	DeleteUpload(ctx context.Context, userID, url string) error
}

type uploadService struct {
	store    blob.Store
	maxBytes int64
}

// NewUploadService creates a new UploadService
func NewUploadService(store blob.Store, maxBytes int64) UploadService {
	return &uploadService{store: store, maxBytes: maxBytes}
}

func (s *uploadService) Upload(ctx context.Context, userID string, kind UploadKind, contentType string, size int64, r io.Reader) (*models.UploadResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("uploading file: kind=%s, content_type=%s, size=%d", kind, contentType, size)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	allowed, ok := uploadTypes[kind]
	if !ok {
		return nil, errors.NewValidationError("kind", "must be images or documents")
	}
	contentType = baseContentType(contentType)
	ext, ok := allowed[contentType]
	if !ok {
		return nil, errors.NewValidationError("file", fmt.Sprintf("content type %q is not allowed", contentType))
	}
	if size <= 0 {
		return nil, errors.NewValidationError("file", "cannot be empty")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, errors.NewValidationError("file", fmt.Sprintf("must be at most %d bytes", s.maxBytes))
	}

	key := fmt.Sprintf("%s/%s/%s.%s", kind, userID, uuid.NewString(), ext)
	url, err := s.store.Put(ctx, key, io.LimitReader(r, size), contentType)
	if err != nil {
		log.Error("failed to store upload: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("stored upload: key=%s", key)
	return &models.UploadResult{URL: url, Key: key, ContentType: contentType, Size: size}, nil
}

func (s *uploadService) DeleteUpload(ctx context.Context, userID, url string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting upload")

	if err := requireUser(userID); err != nil {
		return err
	}
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		return errors.NewValidationError("url", "does not point to an uploaded file")
	}
	if !ownsKey(userID, key) {
		return errors.NewForbiddenError("files can only be deleted by their uploader")
	}
	if err := s.store.Delete(ctx, url); err != nil {
		log.Error("failed to delete upload: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func ownsKey(userID, key string) bool {
	for kind := range uploadTypes {
		if strings.HasPrefix(key, string(kind)+"/"+userID+"/") {
			return true
		}
	}
	return false
}

// baseContentType strips parameters such as "; charset=utf-8".
func baseContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
