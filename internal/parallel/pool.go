package parallel

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Result is the outcome of one submitted job.
type Result[T any] struct {
	ID       string
	Value    T
	Err      error
	Duration time.Duration

	seq int
}

// WorkerPool runs jobs with bounded concurrency.
type WorkerPool[T any] struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	next       int
	results    []Result[T]
	errors     []error
	failFast   bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool with bounded concurrency.
// If maxWorkers is 0, unlimited workers are allowed (bounded by submitted jobs).
// If failFast is true, the context will be cancelled on the first error.
func NewWorkerPool[T any](ctx context.Context, maxWorkers int, failFast bool) *WorkerPool[T] {
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool[T]{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		failFast:   failFast,
		ctx:        ctx,
		cancel:     cancel,
		results:    make([]Result[T], 0),
	}
}

// Context returns the pool context. It is cancelled by Cancel, by Wait and,
// with failFast, by the first error.
func (p *WorkerPool[T]) Context() context.Context {
	return p.ctx
}

// Submit submits a job. Jobs submitted after the pool was cancelled are
// dropped. fn receives the pool context.
func (p *WorkerPool[T]) Submit(id string, fn func(ctx context.Context) (T, error)) {
	select {
	case <-p.ctx.Done():
		return
	default:
	}

	p.mu.Lock()
	seq := p.next
	p.next++
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Acquire semaphore slot
		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				return
			}
		}

		// Check if we should still run (fail-fast or cancelled)
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		value, err := fn(p.ctx)
		result := Result[T]{
			ID:       id,
			Value:    value,
			Err:      err,
			Duration: time.Since(start),
			seq:      seq,
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		p.results = append(p.results, result)
		if err != nil {
			p.errors = append(p.errors, fmt.Errorf("%s: %w", id, err))
			if p.failFast {
				p.cancel()
			}
		}
	}()
}

// Wait waits for all submitted jobs and returns their results in submission
// order. Jobs skipped because of cancellation have no result.
func (p *WorkerPool[T]) Wait() ([]Result[T], []error) {
	p.wg.Wait()
	p.cancel()
	return p.Results(), p.Errors()
}

// Results returns a snapshot of finished results in submission order.
func (p *WorkerPool[T]) Results() []Result[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]Result[T], len(p.results))
	copy(results, p.results)
	sort.Slice(results, func(i, j int) bool { return results[i].seq < results[j].seq })
	return results
}

// Errors returns a snapshot of current errors in completion order.
func (p *WorkerPool[T]) Errors() []error {
	p.mu.Lock()
	defer p.mu.Unlock()

	errors := make([]error, len(p.errors))
	copy(errors, p.errors)
	return errors
}

// Cancel cancels all pending work in the pool.
func (p *WorkerPool[T]) Cancel() {
	p.cancel()
}
