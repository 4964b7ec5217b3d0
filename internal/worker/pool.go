package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces
type Result interface {
	GetError() error
}

type task struct {
	index int
	job   Job
}

type outcome struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of goroutines. Results keep submission order.
type Pool struct {
	workers   int
	tasks     chan task
	outcomes  chan outcome
	submitted atomic.Int64
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	closeJobs sync.Once
	closeOuts sync.Once
}

// NewPool creates a pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:  workers,
		tasks:    make(chan task, workers*2),
		outcomes: make(chan outcome, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			res := t.job.Execute(p.ctx)
			select {
			case p.outcomes <- outcome{index: t.index, result: res}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns without queuing once the pool is shut down.
// Callers submitting more jobs than the buffers hold should use Run.
func (p *Pool) Submit(job Job) {
	index := int(p.submitted.Add(1)) - 1
	select {
	case <-p.ctx.Done():
	case p.tasks <- task{index: index, job: job}:
	}
}

// Wait closes the queue and returns results in submission order.
// Jobs dropped by a shutdown leave nil entries.
func (p *Pool) Wait() []Result {
	p.closeJobs.Do(func() { close(p.tasks) })
	return p.collect(int(p.submitted.Load()))
}

// Run starts the pool, feeds all jobs and returns their results in order
func (p *Pool) Run(jobs []Job) []Result {
	p.Start()

	go func() {
		for _, job := range jobs {
			p.Submit(job)
		}
		p.closeJobs.Do(func() { close(p.tasks) })
	}()

	return p.collect(len(jobs))
}

func (p *Pool) collect(n int) []Result {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	results := make([]Result, n)
	for o := range p.outcomes {
		if o.index < n {
			results[o.index] = o.result
		}
	}
	return results
}

// Shutdown cancels outstanding jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOuts.Do(func() {
		close(p.outcomes)
	})
}
