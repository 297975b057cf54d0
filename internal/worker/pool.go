package worker

import (
	"context"
	"errors"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool executes jobs concurrently and returns results in submission order
type Pool struct {
	workers     int
	stopOnError bool
	jobQueue    chan indexedJob
	results     chan indexedResult
	collected   []Result
	submitted   int
	wg          sync.WaitGroup
	collectDone chan struct{}
	ctx         context.Context
	cancelFunc  context.CancelFunc
	closeOnce   sync.Once
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:     workers,
		jobQueue:    make(chan indexedJob, workers*2),
		results:     make(chan indexedResult, workers*2),
		collectDone: make(chan struct{}),
		ctx:         ctx,
		cancelFunc:  cancel,
	}
}

// StopOnError makes the first failed job cancel the jobs still pending
func (p *Pool) StopOnError() *Pool {
	p.stopOnError = true
	return p
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := ij.job.Execute(p.ctx)
			if p.stopOnError && result != nil && result.GetError() != nil {
				p.cancelFunc()
			}
			p.results <- indexedResult{index: ij.index, result: result}
		}
	}
}

// collect drains results so workers never block on a full channel
func (p *Pool) collect() {
	defer close(p.collectDone)
	for r := range p.results {
		for len(p.collected) <= r.index {
			p.collected = append(p.collected, nil)
		}
		p.collected[r.index] = r.result
	}
}

// Submit queues a job. It returns false once the pool is cancelled.
// Submit must not be called concurrently with itself or Wait.
func (p *Pool) Submit(job Job) bool {
	ij := indexedJob{index: p.submitted, job: job}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- ij:
		p.submitted++
		return true
	}
}

// Wait waits for all submitted jobs and returns their results in submission
// order. Jobs skipped after cancellation have a nil result.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
	p.cancelFunc()

	results := make([]Result, p.submitted)
	copy(results, p.collected)
	return results
}

// Shutdown cancels pending jobs and waits for running ones to return
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

type funcJob[T any] struct {
	index int
	fn    func(ctx context.Context, i int) (T, error)
}

type funcResult[T any] struct {
	value T
	err   error
}

func (j *funcJob[T]) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &funcResult[T]{err: err}
	}
	v, err := j.fn(ctx, j.index)
	return &funcResult[T]{value: v, err: err}
}

func (r *funcResult[T]) GetError() error {
	return r.err
}

// Ordered runs fn for indexes 0..n-1 on up to workers goroutines and returns
// the values in index order. The first error cancels the remaining calls and
// is returned; errors caused by that cancellation are not reported.
func Ordered[T any](ctx context.Context, workers, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	pool := NewPool(ctx, workers).StopOnError()
	pool.Start()

	for i := 0; i < n; i++ {
		if !pool.Submit(&funcJob[T]{index: i, fn: fn}) {
			break
		}
	}
	results := pool.Wait()

	values := make([]T, n)
	var firstErr, cancelErr error
	for i, r := range results {
		if r == nil {
			continue
		}
		fr := r.(*funcResult[T])
		if fr.err != nil {
			if isCancellation(fr.err) {
				if cancelErr == nil {
					cancelErr = fr.err
				}
				continue
			}
			if firstErr == nil {
				firstErr = fr.err
			}
			continue
		}
		values[i] = fr.value
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if cancelErr != nil {
		return nil, cancelErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
