package jobs

import (
	"github.com/vytor/brainyflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	cleanupPool *worker.Pool
	store       worker.BlobDeleter
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(cleanupPool *worker.Pool, store worker.BlobDeleter) JobQueue {
	return &WorkerQueue{
		cleanupPool: cleanupPool,
		store:       store,
	}
}

func (q *WorkerQueue) EnqueueBlobDelete(url string) error {
	if url == "" {
		return nil
	}
	return q.cleanupPool.Submit(&worker.DeleteBlobJob{
		Store: q.store,
		URL:   url,
	})
}
