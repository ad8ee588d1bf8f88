package service

import (
	"sync"

	"github.com/rs/zerolog"
)

// Executor dispatches asynchronous grading work. It is injected into the
// pipeline so tests can substitute an immediate executor.
type Executor interface {
	Dispatch(task func())
}

// SyncExecutor runs each task inline. Used in tests and as a safe default.
type SyncExecutor struct{}

// Dispatch runs the task on the calling goroutine.
func (SyncExecutor) Dispatch(task func()) {
	task()
}

// GradingPool is a bounded worker pool dedicated to subjective grading, so a
// slow completion service never blocks the request goroutine that accepted a
// submission. Once dispatched, a task runs to completion; resubmission does
// not cancel it. The generation guard on the answer row keeps stale results
// from being written back.
type GradingPool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewGradingPool starts workers goroutines consuming a queue of queueSize.
func NewGradingPool(workers, queueSize int, logger zerolog.Logger) *GradingPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}

	pool := &GradingPool{
		tasks:  make(chan func(), queueSize),
		logger: logger.With().Str("component", "grading_pool").Logger(),
	}

	pool.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}

	return pool
}

func (p *GradingPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Dispatch enqueues a grading task. When the queue is full, or the pool is
// already closed, the task runs on the caller's goroutine rather than being
// dropped; losing a grading result would leave the answer row stuck in the
// pending state.
func (p *GradingPool) Dispatch(task func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn().Msg("grading pool closed, running task inline")
		task()
		return
	}

	select {
	case p.tasks <- task:
		p.mu.Unlock()
	default:
		p.mu.Unlock()
		p.logger.Warn().Msg("grading queue full, running task inline")
		task()
	}
}

// Close stops the workers after draining the queue.
func (p *GradingPool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
