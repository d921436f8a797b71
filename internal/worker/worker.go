// Package worker runs background jobs, such as notification delivery, off
// the request path.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

const queueSize = 1000

type WorkerPool struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	wp := &WorkerPool{
		taskQueue: make(chan Task, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for range size {
		wp.wg.Add(1)
		go wp.startWorker()
	}

	return wp
}

func (wp *WorkerPool) startWorker() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		if err := task(wp.ctx); err != nil {
			log.Error().Err(err).Msg("worker task failed")
		}
	}
}

// Submit queues t without blocking. It reports false when the pool is shutting
// down or the queue is full, in which case the task is dropped.
func (wp *WorkerPool) Submit(t Task) bool {
	if wp.isClosing.Load() {
		log.Warn().Msg("task submitted during shutdown, dropping")
		return false
	}
	select {
	case wp.taskQueue <- t:
		return true
	default:
		log.Warn().Int("capacity", queueSize).Msg("task queue full, dropping task")
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to drain. When ctx
// expires first, running tasks see their context cancelled.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	if wp.isClosing.Swap(true) {
		return nil
	}
	close(wp.taskQueue)

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		return nil
	case <-ctx.Done():
		wp.cancel()
		<-done
		return ctx.Err()
	}
}
