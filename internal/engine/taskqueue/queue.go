package taskqueue

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stats is a point-in-time view of a queue's tasks.
type Stats struct {
	Pending int
	Running int
	Done    int
}

// Queue runs enqueued tasks on at most parallelism workers.
//
// Eligibility is re-evaluated whenever a task is enqueued or completes, and
// when the queue is resumed, so callers never poll.
type Queue struct {
	name        string
	parallelism int
	logger      ports.Logger
	base        context.Context

	mu        sync.Mutex
	tasks     []*Task
	active    int
	completed int
	suspended bool
	closed    bool
	idle      chan struct{}
}

// Option configures a Queue.
type Option func(*Queue)

// WithName names the queue in log lines.
func WithName(name string) Option {
	return func(q *Queue) {
		q.name = name
	}
}

// WithLogger sets the logger used to report recovered panics.
func WithLogger(logger ports.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithContext sets the context every task context derives from.
func WithContext(ctx context.Context) Option {
	return func(q *Queue) {
		q.base = ctx
	}
}

// NewQueue creates a Queue running at most parallelism tasks at once.
// A parallelism below one is treated as one.
func NewQueue(parallelism int, opts ...Option) *Queue {
	q := &Queue{
		name:        "queue",
		parallelism: max(parallelism, 1),
		logger:      nopLogger{},
		base:        context.Background(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}

// Enqueue registers tasks with the queue and starts the eligible ones.
func (q *Queue) Enqueue(tasks ...*Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return zerr.With(zerr.Wrap(domain.ErrQueueClosed, "cannot enqueue task"), "queue", q.name)
	}

	for _, t := range tasks {
		if err := t.attach(q); err != nil {
			return zerr.With(err, "queue", q.name)
		}
		// Cancelled before it was enqueued.
		if t.State() == StateDone {
			continue
		}
		q.tasks = append(q.tasks, t)
	}

	q.dispatchLocked()
	return nil
}

// Suspend stops the queue from starting Pending tasks. Running tasks continue.
func (q *Queue) Suspend() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.suspended = true
}

// Resume lets the queue start Pending tasks again.
func (q *Queue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.suspended = false
	q.dispatchLocked()
}

// IsSuspended reports whether the queue is suspended.
func (q *Queue) IsSuspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// CancelAll cancels every task of the queue that is not Done yet.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	tasks := slices.Clone(q.tasks)
	q.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
}

// Wait blocks until every enqueued task is Done, including tasks enqueued
// while waiting, or until ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return nil
		}
		if q.idle == nil {
			q.idle = make(chan struct{})
		}
		idle := q.idle
		q.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return zerr.With(zerr.Wrap(ctx.Err(), "waiting for tasks"), "queue", q.name)
		}
	}
}

// Close makes further Enqueue calls fail with domain.ErrQueueClosed.
// Tasks already enqueued keep running.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Stats returns counts of the queue's tasks per state.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Stats{Done: q.completed}
	for _, t := range q.tasks {
		switch t.State() {
		case StatePending:
			s.Pending++
		case StateRunning:
			s.Running++
		case StateDone:
			// Completion is being published; taskDone will count it.
		}
	}
	return s
}

// dispatchLocked starts eligible Pending tasks in enqueue order while workers are free.
// q.mu must be held.
func (q *Queue) dispatchLocked() {
	if q.suspended {
		return
	}
	for _, t := range q.tasks {
		if q.active >= q.parallelism {
			return
		}
		if t.State() != StatePending || !t.IsEligible() {
			continue
		}
		if !t.state.CompareAndSwap(int32(StatePending), int32(StateRunning)) {
			continue
		}
		q.active++
		go q.execute(t)
	}
}

func (q *Queue) poke() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dispatchLocked()
}

// execute runs t on a worker and releases the worker when the work returns.
func (q *Queue) execute(t *Task) {
	q.run(t)

	q.mu.Lock()
	q.active--
	q.dispatchLocked()
	q.mu.Unlock()

	if !t.deferred.Load() {
		t.settle()
	}
}

func (q *Queue) run(t *Task) {
	defer zerr.Defer(func(err error) {
		// A panicking task never calls its deferred completion.
		t.deferred.Store(false)
		q.logger.Error(zerr.With(zerr.With(zerr.Wrap(err, "task panicked"), "task", t.name), "queue", q.name))
	})
	t.work(t.context(), t)
}

// taskDone removes a completed task and wakes waiters when the queue drained.
func (q *Queue) taskDone(t *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := slices.Index(q.tasks, t); i >= 0 {
		q.tasks = slices.Delete(q.tasks, i, i+1)
		q.completed++
	}
	if len(q.tasks) == 0 && q.idle != nil {
		close(q.idle)
		q.idle = nil
	}
	q.dispatchLocked()
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}
