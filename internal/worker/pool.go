package worker

import (
	"context"
	"sort"
	"sync"
)

// Task is a unit of work executed by Run
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the result of one task, tagged with its submission index
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

type job[T any] struct {
	index int
	task  Task[T]
}

// pool runs tasks on a fixed number of goroutines
type pool[T any] struct {
	workers    int
	jobQueue   chan job[T]
	results    chan Outcome[T]
	next       int
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// newPool buffers buffer jobs and outcomes; submitting more than that before
// wait blocks
func newPool[T any](ctx context.Context, workers, buffer int) *pool[T] {
	if workers <= 0 {
		workers = 1
	}
	if buffer < workers {
		buffer = workers
	}
	ctx, cancel := context.WithCancel(ctx)
	return &pool[T]{
		workers:    workers,
		jobQueue:   make(chan job[T], buffer),
		results:    make(chan Outcome[T], buffer),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

func (p *pool[T]) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *pool[T]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobQueue:
			if !ok {
				return
			}
			v, err := j.task(p.ctx)
			select {
			case p.results <- Outcome[T]{Index: j.index, Value: v, Err: err}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// submit queues a task; it is dropped once the pool is cancelled
func (p *pool[T]) submit(task Task[T]) {
	j := job[T]{index: p.next, task: task}
	p.next++
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- j:
	}
}

// wait closes the queue, waits for the workers, and returns every outcome
// that was produced, sorted by submission index
func (p *pool[T]) wait() []Outcome[T] {
	close(p.jobQueue)

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	var out []Outcome[T]
	for r := range p.results {
		out = append(out, r)
	}
	p.cancelFunc()

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Run executes every task with at most workers in flight and returns the
// outcomes in submission order. Tasks not started before ctx ends are dropped.
func Run[T any](ctx context.Context, workers int, tasks []Task[T]) []Outcome[T] {
	p := newPool[T](ctx, workers, len(tasks))
	p.start()
	for _, t := range tasks {
		p.submit(t)
	}
	return p.wait()
}
