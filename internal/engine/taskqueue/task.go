// Package taskqueue implements a bounded worker pool over a graph of cooperative tasks.
package taskqueue

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/zerr"
)

// State is the lifecycle state of a Task.
type State int32

const (
	// StatePending indicates the task waits for its dependencies or a worker.
	StatePending State = iota
	// StateRunning indicates the task's work was started.
	StateRunning
	// StateDone indicates the task finished or was cancelled before it started.
	StateDone
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Work is the body of a Task. ctx is cancelled when the task is cancelled.
type Work func(ctx context.Context, t *Task)

// Task is a unit of work scheduled by a Queue.
//
// State only moves forward: Pending -> Running -> Done, or Pending -> Done when
// the task is cancelled before a worker picked it up.
type Task struct {
	name        string
	work        Work
	onCancel    func()
	cancellable bool

	state     atomic.Int32
	cancelled atomic.Bool
	deferred  atomic.Bool

	mu         sync.Mutex
	deps       []*Task
	dependents []*Task
	queue      *Queue
	ctx        context.Context
	stop       context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once
}

// TaskOption configures a Task.
type TaskOption func(*Task)

// OnCancel registers fn to run when the task is cancelled while still Pending.
// fn runs before the task is marked Done.
func OnCancel(fn func()) TaskOption {
	return func(t *Task) {
		t.onCancel = fn
	}
}

// Uncancellable makes the task ignore Cancel. Its context is also detached
// from the queue's cancellation.
func Uncancellable() TaskOption {
	return func(t *Task) {
		t.cancellable = false
	}
}

// DependsOn adds dependencies at construction time.
func DependsOn(deps ...*Task) TaskOption {
	return func(t *Task) {
		t.deps = append(t.deps, deps...)
	}
}

// NewTask creates a Pending task running work.
func NewTask(name string, work Work, opts ...TaskOption) *Task {
	t := &Task{
		name:        name,
		work:        work,
		cancellable: true,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, dep := range t.deps {
		dep.addDependent(t)
	}
	return t
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// IsCancelled reports whether Cancel was called on the task.
func (t *Task) IsCancelled() bool {
	return t.cancelled.Load()
}

// IsEligible reports whether the task may start: it is not cancelled and
// every dependency is Done.
func (t *Task) IsEligible() bool {
	if t.IsCancelled() {
		return false
	}
	for _, dep := range t.Dependencies() {
		if dep.State() != StateDone {
			return false
		}
	}
	return true
}

// Dependencies returns a copy of the task's dependencies.
func (t *Task) Dependencies() []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.deps)
}

// Done returns a channel that is closed once the task reaches StateDone.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// AddDependency makes t wait for deps. It fails when t already left Pending
// or when a dependency would close a cycle.
func (t *Task) AddDependency(deps ...*Task) error {
	for _, dep := range deps {
		if t.State() != StatePending {
			return zerr.With(zerr.Wrap(domain.ErrTaskStarted, "cannot add dependency"), "task", t.name)
		}
		if path := dep.pathTo(t); path != nil {
			return buildCycleError(append([]*Task{t}, path...))
		}

		t.mu.Lock()
		t.deps = append(t.deps, dep)
		t.mu.Unlock()
		dep.addDependent(t)
	}
	return nil
}

// Cancel marks the task cancelled and cancels its context.
// A Pending task becomes Done immediately after its OnCancel hook ran.
// A Running task keeps running until its work observes the cancelled context.
func (t *Task) Cancel() {
	if !t.cancellable {
		return
	}
	if !t.cancelled.CompareAndSwap(false, true) {
		return
	}

	t.mu.Lock()
	stop := t.stop
	t.mu.Unlock()
	if stop != nil {
		stop()
	}

	if t.state.CompareAndSwap(int32(StatePending), int32(StateDone)) {
		if t.onCancel != nil {
			t.onCancel()
		}
		t.complete()
	}
}

// Defer detaches the task's completion from the return of its work.
// It must be called from within the work; the task becomes Done when the
// returned function is called.
func (t *Task) Defer() func() {
	t.deferred.Store(true)
	return t.settle
}

// context returns the context handed to the task's work.
func (t *Task) context() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// attach binds the task to q and derives its context from q's base context.
func (t *Task) attach(q *Queue) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.queue != nil {
		return zerr.With(zerr.Wrap(domain.ErrTaskEnqueued, "cannot enqueue task"), "task", t.name)
	}
	t.queue = q

	base := q.base
	if !t.cancellable {
		base = context.WithoutCancel(base)
	}
	t.ctx, t.stop = context.WithCancel(base)
	if t.cancelled.Load() {
		t.stop()
	}
	return nil
}

func (t *Task) owner() *Queue {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queue
}

func (t *Task) addDependent(d *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dependents = append(t.dependents, d)
}

// settle moves a Running task to Done.
func (t *Task) settle() {
	if t.state.CompareAndSwap(int32(StateRunning), int32(StateDone)) {
		t.complete()
	}
}

// complete publishes the Done state to waiters, the owning queue and the
// queues of dependents.
func (t *Task) complete() {
	t.doneOnce.Do(func() {
		t.mu.Lock()
		q := t.queue
		stop := t.stop
		dependents := slices.Clone(t.dependents)
		t.mu.Unlock()

		if stop != nil {
			stop()
		}
		close(t.done)

		if q != nil {
			q.taskDone(t)
		}

		poked := map[*Queue]bool{q: true}
		for _, d := range dependents {
			dq := d.owner()
			if dq == nil || poked[dq] {
				continue
			}
			poked[dq] = true
			dq.poke()
		}
	})
}

// pathTo returns the dependency path from t to target, or nil if target is
// not reachable.
func (t *Task) pathTo(target *Task) []*Task {
	visited := make(map[*Task]bool)

	var visit func(u *Task, path []*Task) []*Task
	visit = func(u *Task, path []*Task) []*Task {
		path = append(path, u)
		if u == target {
			return path
		}
		visited[u] = true
		for _, dep := range u.Dependencies() {
			if visited[dep] {
				continue
			}
			if found := visit(dep, path); found != nil {
				return found
			}
		}
		return nil
	}

	return visit(t, nil)
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []*Task) error {
	names := make([]string, len(path))
	for i, t := range path {
		names[i] = t.name
	}
	return zerr.With(
		zerr.Wrap(domain.ErrCycleDetected, "dependency would create a cycle"),
		"cycle", strings.Join(names, " -> "),
	)
}
