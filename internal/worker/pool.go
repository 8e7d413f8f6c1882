package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/brainyflash/internal/logger"
)

var (
	// ErrPoolClosed is returned by Submit after Stop.
	ErrPoolClosed = errors.New("worker pool is stopped")
	// ErrQueueFull is returned by Submit when no queue slot is free.
	ErrQueueFull = errors.New("worker pool queue is full")
)

type Job interface {
	Run(context.Context) error
	Name() string
}

type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	workers int
	queue   int
	cancel  context.CancelFunc
	log     *logger.Logger
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		queue:   queueSize,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-p.jobs:
					if !ok {
						workerLog.Debug("worker shutting down (queue closed)")
						return
					}
					p.run(ctx, workerLog, job)
				}
			}
		}(i + 1)
	}
}

func (p *Pool) run(ctx context.Context, workerLog *logger.Logger, job Job) {
	jobLog := workerLog.WithField("job", job.Name())
	jobLog.Debug("starting job")
	start := time.Now()

	jobCtx := logger.NewContext(ctx, jobLog)

	defer func() {
		if r := recover(); r != nil {
			jobLog.Error("job panicked after %v: %v", time.Since(start), r)
		}
	}()

	if err := job.Run(jobCtx); err != nil {
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
	} else {
		jobLog.Info("job completed in %v", time.Since(start))
	}
}

// Stop closes the queue, lets workers drain what was already queued, and waits
// for them. Cancelling the Start context instead abandons queued jobs.
func (p *Pool) Stop() {
	p.log.Info("stopping worker pool")
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.log.Info("worker pool stopped")
}

// Submit queues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		p.log.Debug("submitted job: %s", job.Name())
		return nil
	default:
		p.log.Warn("queue full, dropping job: %s", job.Name())
		return ErrQueueFull
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
