package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

type ProcessFunc[T any] func(ctx context.Context, job T) error

// WorkerPool runs jobs of type T on a fixed number of goroutines. Workers
// exit when the context is cancelled or the pool is stopped.
type WorkerPool[T any] struct {
	numWorkers int
	jobs       chan T
	processor  ProcessFunc[T]
	wg         sync.WaitGroup

	failed   atomic.Int64
	errOnce  sync.Once
	firstErr error
}

func NewWorkerPool[T any](numWorkers int, bufferSize int, processor ProcessFunc[T]) *WorkerPool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan T, bufferSize),
		processor:  processor,
	}
}

func (wp *WorkerPool[T]) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *WorkerPool[T]) worker(ctx context.Context) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			if err := wp.processor(ctx, job); err != nil {
				wp.failed.Add(1)
				wp.errOnce.Do(func() { wp.firstErr = err })
			}
		}
	}
}

// Submit queues a job, blocking while the buffer is full. It gives up when
// ctx is done.
func (wp *WorkerPool[T]) Submit(ctx context.Context, job T) error {
	select {
	case wp.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue and waits for workers to drain it. It returns the
// first processing error, if any.
func (wp *WorkerPool[T]) Stop() error {
	close(wp.jobs)
	wp.wg.Wait()
	return wp.firstErr
}

// Failed reports how many jobs returned an error.
func (wp *WorkerPool[T]) Failed() int64 {
	return wp.failed.Load()
}
