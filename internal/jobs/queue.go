package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueBlobDelete schedules removal of an uploaded file that nothing references anymore.
	EnqueueBlobDelete(url string) error
}
