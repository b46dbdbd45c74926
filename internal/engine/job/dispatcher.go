package job

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/haul/internal/engine/taskqueue"
	"go.trai.ch/zerr"
)

const (
	// DefaultJobConcurrency is the number of jobs a dispatcher runs at once.
	DefaultJobConcurrency = 1
	// DefaultWorkers is the number of concurrent downloads of one job.
	DefaultWorkers = 4
)

// Deps are the collaborators shared by every job of a dispatcher.
type Deps struct {
	Fetcher   ports.Fetcher
	Store     ports.ContentStore
	Digester  ports.Digester
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

// Dispatcher runs submitted jobs on a bounded pool.
type Dispatcher struct {
	deps         Deps
	jobs         int
	workers      int
	strictRename bool
	diagnose     func(domain.Diagnostic)

	ctx    context.Context
	cancel context.CancelFunc
	pool   *taskqueue.Queue

	mu     sync.Mutex
	active map[string]*Job
	closed bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithJobConcurrency sets how many jobs run at once.
func WithJobConcurrency(n int) Option {
	return func(d *Dispatcher) {
		d.jobs = n
	}
}

// WithWorkers sets how many downloads of one job run at once.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		d.workers = n
	}
}

// WithStrictRename makes failed renames record a failure instead of the identifier.
func WithStrictRename(strict bool) Option {
	return func(d *Dispatcher) {
		d.strictRename = strict
	}
}

// WithDiagnostics registers a hook receiving retry and storage events of every job.
// The hook is called from worker goroutines and must be safe for concurrent use.
func WithDiagnostics(fn func(domain.Diagnostic)) Option {
	return func(d *Dispatcher) {
		d.diagnose = fn
	}
}

// WithContext sets the context every job derives from.
func WithContext(ctx context.Context) Option {
	return func(d *Dispatcher) {
		d.ctx = ctx
	}
}

// NewDispatcher creates a Dispatcher. Fetcher, Store and Digester are required.
func NewDispatcher(deps Deps, opts ...Option) (*Dispatcher, error) {
	switch {
	case deps.Fetcher == nil:
		return nil, zerr.With(zerr.Wrap(domain.ErrMissingDependency, "cannot create dispatcher"), "dependency", "fetcher")
	case deps.Store == nil:
		return nil, zerr.With(zerr.Wrap(domain.ErrMissingDependency, "cannot create dispatcher"), "dependency", "store")
	case deps.Digester == nil:
		return nil, zerr.With(zerr.Wrap(domain.ErrMissingDependency, "cannot create dispatcher"), "dependency", "digester")
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}

	d := &Dispatcher{
		deps:    deps,
		jobs:    DefaultJobConcurrency,
		workers: DefaultWorkers,
		ctx:     context.Background(),
		active:  make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctx, d.cancel = context.WithCancel(d.ctx)
	d.pool = taskqueue.NewQueue(d.jobs,
		taskqueue.WithName("dispatcher"),
		taskqueue.WithContext(d.ctx),
		taskqueue.WithLogger(deps.Logger),
	)
	return d, nil
}

// Submit validates the request and schedules a job fetching urls.
// cb is invoked exactly once with the job's URL -> label map.
func (d *Dispatcher) Submit(urls []string, timeout time.Duration, maxRetries int, cb Callback) (*Job, error) {
	if len(urls) == 0 {
		return nil, zerr.Wrap(domain.ErrNoURLs, "cannot submit job")
	}
	policy, err := domain.NewRetryPolicy(timeout, maxRetries)
	if err != nil {
		return nil, zerr.Wrap(err, "cannot submit job")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, zerr.Wrap(domain.ErrDispatcherClosed, "cannot submit job")
	}
	j := newJob(d.ctx, urls, policy, cb, d)
	j.onFinish = d.forget
	d.active[j.id] = j
	d.mu.Unlock()

	if err := d.pool.Enqueue(j.task); err != nil {
		d.forget(j)
		return nil, zerr.With(zerr.Wrap(err, "cannot submit job"), "job", j.id)
	}
	return j, nil
}

// Job returns the active job with the given id.
func (d *Dispatcher) Job(id string) (*Job, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	j, ok := d.active[id]
	return j, ok
}

// Active returns the number of jobs that have not finished yet.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.active)
}

// Shutdown refuses new jobs, cancels the active ones and waits for the pool to drain.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	jobs := make([]*Job, 0, len(d.active))
	for _, j := range d.active {
		jobs = append(jobs, j)
	}
	d.mu.Unlock()

	d.pool.Close()

	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Go(j.Cancel)
	}
	wg.Wait()

	err := d.pool.Wait(ctx)
	d.cancel()
	return err
}

func (d *Dispatcher) forget(j *Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.active, j.id)
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}
