// Package job runs batches of downloads and reports their aggregated results.
package job

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/engine/fetch"
	"go.trai.ch/haul/internal/engine/taskqueue"
	"go.trai.ch/zerr"
)

// Callback receives the URL -> label map of a finished or cancelled job.
type Callback func(results map[string]string)

// Job downloads a set of URLs on a private work queue and invokes its
// callback exactly once, on completion or on cancellation.
type Job struct {
	id       string
	urls     []string
	policy   domain.RetryPolicy
	callback Callback
	env      *fetch.Env

	ctx    context.Context
	cancel context.CancelFunc
	work   *taskqueue.Queue
	lane   *taskqueue.Queue
	task   *taskqueue.Task

	mu        sync.Mutex
	status    domain.JobStatus
	started   bool
	cancelled bool
	final     map[string]string

	once     sync.Once
	done     chan struct{}
	onFinish func(*Job)
}

func newJob(parent context.Context, urls []string, policy domain.RetryPolicy, cb Callback, d *Dispatcher) *Job {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()

	j := &Job{
		id:       id,
		urls:     dedupe(urls),
		policy:   policy,
		callback: cb,
		ctx:      ctx,
		cancel:   cancel,
		work: taskqueue.NewQueue(d.workers,
			taskqueue.WithName("job "+id),
			taskqueue.WithContext(ctx),
			taskqueue.WithLogger(d.deps.Logger),
		),
		lane: taskqueue.NewQueue(1,
			taskqueue.WithName("results "+id),
			taskqueue.WithLogger(d.deps.Logger),
		),
		status: domain.JobStatusPending,
		done:   make(chan struct{}),
	}

	j.env = &fetch.Env{
		JobID:        id,
		Policy:       policy,
		Fetcher:      d.deps.Fetcher,
		Store:        d.deps.Store,
		Digester:     d.deps.Digester,
		Logger:       d.deps.Logger,
		Telemetry:    d.deps.Telemetry,
		Results:      fetch.NewResults(j.lane, domain.NewResultStore()),
		StrictRename: d.strictRename,
		Diagnose:     d.diagnose,
	}

	j.task = taskqueue.NewTask("job "+id, j.run, taskqueue.OnCancel(func() {
		j.fire(domain.JobStatusCancelled)
	}))
	return j
}

// ID returns the job identifier.
func (j *Job) ID() string {
	return j.id
}

// URLs returns the distinct URLs of the job in submission order.
func (j *Job) URLs() []string {
	return append([]string(nil), j.urls...)
}

// Policy returns the retry policy shared by the job's downloads.
func (j *Job) Policy() domain.RetryPolicy {
	return j.policy
}

// State returns the current job status.
func (j *Job) State() domain.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Results returns the labels recorded so far, or the final map once the job is done.
func (j *Job) Results() map[string]string {
	j.mu.Lock()
	final := j.final
	j.mu.Unlock()
	if final != nil {
		return final
	}
	return j.env.Results.Snapshot()
}

// Done returns a channel closed after the callback returned.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job is done or ctx ends.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return zerr.With(zerr.Wrap(ctx.Err(), "waiting for job"), "job", j.id)
	}
}

// Pause stops the job from starting new downloads. Running downloads continue.
func (j *Job) Pause() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.IsTerminal() || j.cancelled {
		return
	}
	j.work.Suspend()
	j.status = domain.JobStatusPaused
}

// Resume undoes Pause.
func (j *Job) Resume() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != domain.JobStatusPaused {
		return
	}
	j.work.Resume()
	if j.started {
		j.status = domain.JobStatusRunning
	} else {
		j.status = domain.JobStatusPending
	}
}

// Cancel aborts the job. In-flight fetches are interrupted, downloads that
// did not finish are recorded as cancelled and the callback fires once the
// job's queues settled. Cancel returns after the callback fired.
func (j *Job) Cancel() {
	j.mu.Lock()
	if j.status.IsTerminal() {
		j.mu.Unlock()
		return
	}
	if j.cancelled {
		j.mu.Unlock()
		<-j.done
		return
	}
	j.cancelled = true
	started := j.started
	j.mu.Unlock()

	// A job still waiting on the dispatcher fires from its cancel hook.
	j.task.Cancel()
	if !started {
		j.fire(domain.JobStatusCancelled)
		return
	}

	j.work.CancelAll()
	// Joins are not cancellable and must run even in a paused job.
	j.work.Resume()
	j.cancel()

	j.env.Logger.Warn(fmt.Sprintf("job %s cancelled, aborting in-flight downloads", j.id))
	j.diagnose(domain.Diagnostic{Kind: domain.DiagnosticSessionInvalidated})

	if err := j.work.Wait(context.Background()); err != nil {
		j.env.Logger.Error(err)
	}
	if err := j.env.Results.Drain(context.Background()); err != nil {
		j.env.Logger.Error(err)
	}
	j.fire(domain.JobStatusCancelled)
}

// run is the job's work on the dispatcher pool. It holds its worker until the
// callback fired so the pool bounds the number of running jobs.
func (j *Job) run(_ context.Context, _ *taskqueue.Task) {
	j.env.Logger.Info(fmt.Sprintf("job %s started: %d urls", j.id, len(j.urls)))

	fetches := make([]*taskqueue.Task, 0, len(j.urls)+1)
	for _, url := range j.urls {
		fetches = append(fetches, fetch.NewFetchTask(j.env, j.work, url).Task())
	}
	finish := taskqueue.NewTask("finish "+j.id, j.finish,
		taskqueue.DependsOn(fetches...),
		taskqueue.Uncancellable(),
	)

	// Cancel observes started only once the tasks are enqueued.
	j.mu.Lock()
	if j.cancelled {
		j.mu.Unlock()
		j.fire(domain.JobStatusCancelled)
		return
	}
	j.started = true
	if j.status == domain.JobStatusPending {
		j.status = domain.JobStatusRunning
	}
	err := j.work.Enqueue(append(fetches, finish)...)
	j.mu.Unlock()

	if err != nil {
		j.env.Logger.Error(zerr.With(zerr.Wrap(err, "schedule job"), "job", j.id))
		j.fire(domain.JobStatusCompleted)
	}

	<-j.done
}

// finish runs after every FetchTask is Done.
func (j *Job) finish(ctx context.Context, _ *taskqueue.Task) {
	if err := j.env.Results.Drain(ctx); err != nil {
		j.env.Logger.Error(err)
	}
	j.fire(domain.JobStatusCompleted)
}

// fire invokes the callback exactly once with the final results.
func (j *Job) fire(status domain.JobStatus) {
	j.once.Do(func() {
		defer close(j.done)

		final := j.env.Results.Snapshot()
		j.mu.Lock()
		if j.cancelled {
			status = domain.JobStatusCancelled
		}
		j.status = status
		j.final = final
		j.mu.Unlock()

		j.work.Close()
		j.cancel()

		j.env.Logger.Info(fmt.Sprintf("job %s %s: %d results", j.id, status, len(final)))

		if j.onFinish != nil {
			j.onFinish(j)
		}
		if j.callback != nil {
			j.invoke(final)
		}
	})
}

func (j *Job) invoke(results map[string]string) {
	defer zerr.Defer(func(err error) {
		j.env.Logger.Error(zerr.With(zerr.Wrap(err, "job callback panicked"), "job", j.id))
	})
	j.callback(results)
}

func (j *Job) diagnose(d domain.Diagnostic) {
	if j.env.Diagnose == nil {
		return
	}
	d.JobID = j.id
	j.env.Diagnose(d)
}

// dedupe drops repeated URLs, keeping the first occurrence.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}
