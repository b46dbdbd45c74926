package fetch

import (
	"context"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/engine/taskqueue"
	"go.trai.ch/zerr"
)

// Rename moves a downloaded file to the digest of its URL and records the digest.
type Rename struct {
	env  *Env
	url  string
	in   chan domain.Outcome
	task *taskqueue.Task
}

// NewRename creates the rename task for url.
// A rename cancelled before it starts replaces the interim file name with the
// cancelled label.
func NewRename(env *Env, url string) *Rename {
	r := &Rename{
		env: env,
		url: url,
		in:  make(chan domain.Outcome, 1),
	}
	r.task = taskqueue.NewTask("rename "+url, r.run, taskqueue.OnCancel(func() {
		if err := env.Results.RecordCancelled(url); err != nil {
			env.logger().Error(zerr.With(zerr.Wrap(err, "record cancelled rename"), "url", url))
		}
	}))
	return r
}

// Task returns the schedulable task.
func (r *Rename) Task() *taskqueue.Task {
	return r.task
}

// Deliver hands the download outcome to the rename. Only the first call has an effect.
func (r *Rename) Deliver(outcome domain.Outcome) {
	select {
	case r.in <- outcome:
	default:
	}
}

func (r *Rename) run(ctx context.Context, _ *taskqueue.Task) {
	var outcome domain.Outcome
	select {
	case outcome = <-r.in:
	default:
	}
	if outcome.Kind != domain.OutcomeSuccess {
		return
	}

	id := r.env.Digester.Digest(r.url)
	label := id

	// A started rename is applied even if the job is cancelled meanwhile.
	if err := r.env.Store.MoveOrReplace(context.WithoutCancel(ctx), outcome.Name, id); err != nil {
		err = zerr.With(zerr.With(zerr.Wrap(err, "rename download"), "from", outcome.Name), "to", id)
		r.env.logger().Error(err)
		r.env.diagnose(domain.Diagnostic{URL: r.url, Kind: domain.DiagnosticStorageError, Err: err})
		if r.env.StrictRename {
			label = domain.LabelFailed
		}
	}

	if err := r.env.Results.Record(r.url, label); err != nil {
		r.env.logger().Error(zerr.With(zerr.Wrap(err, "record rename"), "url", r.url))
	}
}
