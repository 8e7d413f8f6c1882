package services

import (
	"context"

	"github.com/vytor/brainyflash/internal/blob"
	"github.com/vytor/brainyflash/internal/jobs"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/repository"
)

// imageReleaser queues card images for deletion once no card points at them.
type imageReleaser struct {
	store         blob.Store
	flashcardRepo repository.FlashcardRepository
	jobQueue      jobs.JobQueue
}

// release queues url for deletion when it lives in the store under one of the
// owners' upload prefixes and no remaining flashcard references it. Must run
// after the referencing card was changed or removed.
func (r imageReleaser) release(ctx context.Context, url string, owners ...string) {
	log := logger.FromContext(ctx)

	key, ok := r.store.KeyFromURL(url)
	if !ok {
		log.Debug("image not in blob store, skipping cleanup")
		return
	}
	owned := false
	for _, owner := range owners {
		if owner != "" && ownsKey(owner, key) {
			owned = true
			break
		}
	}
	if !owned {
		log.Debug("image uploaded by someone else, skipping cleanup: key=%s", key)
		return
	}

	refs, err := r.flashcardRepo.CountByImageURL(ctx, url)
	if err != nil {
		log.Warn("failed to count image references, skipping cleanup: %v", err)
		return
	}
	if refs > 0 {
		log.Debug("image still used by %d flashcards: key=%s", refs, key)
		return
	}

	if err := r.jobQueue.EnqueueBlobDelete(url); err != nil {
		log.Warn("failed to enqueue image cleanup: %v", err)
	}
}
