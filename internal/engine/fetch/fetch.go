package fetch

import (
	"context"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/engine/taskqueue"
	"go.trai.ch/zerr"
)

// FetchTask composes Download -> hand-off -> Rename for one URL.
//
// It enqueues its children on the job's work queue and completes when the
// rename is Done, without holding a worker in between.
type FetchTask struct {
	env   *Env
	url   string
	queue *taskqueue.Queue
	task  *taskqueue.Task
}

// NewFetchTask creates the fetch task for url. Its children run on queue.
// A fetch cancelled before it started records the URL as cancelled.
func NewFetchTask(env *Env, queue *taskqueue.Queue, url string) *FetchTask {
	f := &FetchTask{
		env:   env,
		url:   url,
		queue: queue,
	}
	f.task = taskqueue.NewTask("fetch "+url, f.run, taskqueue.OnCancel(func() {
		if err := env.Results.RecordCancelled(url); err != nil {
			env.logger().Error(err)
		}
	}))
	return f
}

// Task returns the schedulable task.
func (f *FetchTask) Task() *taskqueue.Task {
	return f.task
}

// URL returns the URL fetched by the task.
func (f *FetchTask) URL() string {
	return f.url
}

func (f *FetchTask) run(ctx context.Context, t *taskqueue.Task) {
	complete := t.Defer()

	download := NewDownload(f.env, f.url)
	rename := NewRename(f.env, f.url)
	handoff := newHandoff(f.url, download, rename)

	err := rename.Task().AddDependency(handoff)
	if err == nil {
		err = f.queue.Enqueue(download.Task(), handoff, rename.Task())
	}
	if err != nil {
		f.env.logger().Error(zerr.With(zerr.Wrap(err, "schedule download"), "url", f.url))
		if err := f.env.Results.Record(f.url, domain.LabelFailed); err != nil {
			f.env.logger().Error(err)
		}
		complete()
		return
	}

	go func() {
		select {
		case <-rename.Task().Done():
		case <-ctx.Done():
			download.Task().Cancel()
			rename.Task().Cancel()
			<-rename.Task().Done()
		}
		complete()
	}()
}

// newHandoff returns the join task that moves the download outcome to the
// rename. It runs once the download is Done, which is after the outcome was sent.
func newHandoff(url string, download *Download, rename *Rename) *taskqueue.Task {
	return taskqueue.NewTask("handoff "+url, func(context.Context, *taskqueue.Task) {
		select {
		case outcome := <-download.Outcome():
			rename.Deliver(outcome)
		default:
			rename.Deliver(domain.Cancelled())
		}
	},
		taskqueue.DependsOn(download.Task()),
		taskqueue.Uncancellable(),
	)
}
