package worker

import (
	"context"
	"errors"

	"github.com/vytor/brainyflash/internal/blob"
	"github.com/vytor/brainyflash/internal/logger"
)

// BlobDeleter is the part of the blob store cleanup jobs need.
type BlobDeleter interface {
	Delete(ctx context.Context, url string) error
}

// DeleteBlobJob removes an uploaded file that is no longer referenced.
type DeleteBlobJob struct {
	Store BlobDeleter
	URL   string
}

func (j *DeleteBlobJob) Name() string { return "delete_blob" }

func (j *DeleteBlobJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("url", j.URL)
	log.Debug("deleting blob")

	if err := j.Store.Delete(ctx, j.URL); err != nil {
		if errors.Is(err, blob.ErrForeignURL) {
			log.Warn("skipping blob outside the store")
			return nil
		}
		return err
	}
	return nil
}
