package fetch

import (
	"context"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/engine/taskqueue"
)

// Results serializes writes into a job's ResultStore through a one-worker lane.
type Results struct {
	lane  *taskqueue.Queue
	store *domain.ResultStore
}

// NewResults creates Results writing into store on lane.
// The lane is expected to run a single worker so records land in FIFO order.
func NewResults(lane *taskqueue.Queue, store *domain.ResultStore) *Results {
	return &Results{lane: lane, store: store}
}

// NewRecorder returns a task that writes label for url into store.
func NewRecorder(store *domain.ResultStore, url, label string) *taskqueue.Task {
	return taskqueue.NewTask("record "+url, func(context.Context, *taskqueue.Task) {
		store.Record(url, label)
	}, taskqueue.Uncancellable())
}

// NewInterimRecorder returns a task that writes the downloaded file name for
// url into store until the rename records the identifier.
func NewInterimRecorder(store *domain.ResultStore, url, name string) *taskqueue.Task {
	return taskqueue.NewTask("record "+url, func(context.Context, *taskqueue.Task) {
		store.RecordInterim(url, name)
	}, taskqueue.Uncancellable())
}

// NewCancelRecorder returns a task that marks url cancelled unless a terminal
// label is already recorded for it.
func NewCancelRecorder(store *domain.ResultStore, url string) *taskqueue.Task {
	return taskqueue.NewTask("record "+url, func(context.Context, *taskqueue.Task) {
		store.RecordCancelled(url)
	}, taskqueue.Uncancellable())
}

// Record queues a write of label for url.
func (r *Results) Record(url, label string) error {
	return r.lane.Enqueue(NewRecorder(r.store, url, label))
}

// RecordInterim queues a write of the downloaded file name for url.
func (r *Results) RecordInterim(url, name string) error {
	return r.lane.Enqueue(NewInterimRecorder(r.store, url, name))
}

// RecordCancelled queues a cancellation record for url.
func (r *Results) RecordCancelled(url string) error {
	return r.lane.Enqueue(NewCancelRecorder(r.store, url))
}

// Drain waits until every queued record was written.
func (r *Results) Drain(ctx context.Context) error {
	return r.lane.Wait(ctx)
}

// Snapshot returns a copy of the recorded labels.
func (r *Results) Snapshot() map[string]string {
	return r.store.Snapshot()
}
