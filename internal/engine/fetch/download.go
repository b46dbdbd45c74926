package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/haul/internal/engine/taskqueue"
	"go.trai.ch/zerr"
)

// Download fetches one URL with retries and reports exactly one outcome.
type Download struct {
	env  *Env
	url  string
	out  chan domain.Outcome
	once sync.Once
	task *taskqueue.Task
}

// NewDownload creates the download task for url.
// A download cancelled before it starts still reports a cancellation.
func NewDownload(env *Env, url string) *Download {
	d := &Download{
		env: env,
		url: url,
		out: make(chan domain.Outcome, 1),
	}
	d.task = taskqueue.NewTask("download "+url, d.run, taskqueue.OnCancel(func() {
		d.report(domain.Cancelled())
	}))
	return d
}

// Task returns the schedulable task.
func (d *Download) Task() *taskqueue.Task {
	return d.task
}

// Outcome delivers the terminal outcome once the download reported it.
func (d *Download) Outcome() <-chan domain.Outcome {
	return d.out
}

func (d *Download) run(ctx context.Context, _ *taskqueue.Task) {
	ctx, vertex := d.env.record(ctx, d.url)
	defer zerr.Defer(func(err error) {
		err = zerr.With(zerr.Wrap(err, "download panicked"), "url", d.url)
		d.env.logger().Error(err)
		vertex.Complete(err)
		d.report(domain.PermanentFailure(err))
	})
	outcome := d.fetchWithRetry(ctx, vertex)
	vertex.Complete(outcome.Err())
	d.report(outcome)
}

// fetchWithRetry performs up to Policy.MaxRetries attempts. A temporary
// failure after attempt k waits k*Timeout before the next one.
func (d *Download) fetchWithRetry(ctx context.Context, vertex ports.Vertex) domain.Outcome {
	policy := d.env.Policy
	for attempt := 1; ; attempt++ {
		outcome := d.attempt(ctx)
		if outcome.Kind != domain.OutcomeTemporaryFailure {
			return outcome
		}

		if !policy.ShouldRetry(attempt) {
			return domain.PermanentFailure(zerr.With(zerr.Wrap(outcome.Cause, "retries exhausted"), "attempts", attempt))
		}

		delay := policy.Backoff(attempt)
		d.env.diagnose(domain.Diagnostic{
			URL:     d.url,
			Kind:    domain.DiagnosticRetry,
			Attempt: attempt,
			Err:     outcome.Cause,
		})
		vertex.Log(domain.LogLevelWarn, fmt.Sprintf("attempt %d failed, retrying in %s", attempt, delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Cancelled()
		case <-timer.C:
		}
	}
}

// attempt performs a single bounded fetch and classifies its result.
func (d *Download) attempt(ctx context.Context) domain.Outcome {
	if ctx.Err() != nil {
		return domain.Cancelled()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, d.env.Policy.Timeout)
	defer cancel()

	resp, err := d.env.Fetcher.Fetch(fetchCtx, d.url)
	// Cancellation wins over whatever the fetch returned.
	if ctx.Err() != nil {
		return domain.Cancelled()
	}
	if err != nil {
		if errors.Is(err, domain.ErrFetchTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return domain.TemporaryFailure(err)
		}
		return domain.PermanentFailure(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return d.persist(ctx, resp.Body)
	case http.StatusServiceUnavailable:
		return domain.TemporaryFailure(zerr.With(zerr.Wrap(domain.ErrTransient, "service unavailable"), "status", resp.StatusCode))
	default:
		return domain.PermanentFailure(zerr.With(zerr.Wrap(domain.ErrPermanent, "unexpected status"), "status", resp.StatusCode))
	}
}

// persist stores the body under the sanitized URL, replacing an existing entry.
func (d *Download) persist(ctx context.Context, body []byte) domain.Outcome {
	name := domain.SanitizeURL(d.url)
	if err := d.env.Store.Store(ctx, name, body); err != nil {
		if ctx.Err() != nil {
			return domain.Cancelled()
		}
		err = zerr.With(zerr.Wrap(err, "store download"), "name", name)
		d.env.diagnose(domain.Diagnostic{URL: d.url, Kind: domain.DiagnosticStorageError, Err: err})
		return domain.PermanentFailure(err)
	}
	return domain.Success(name)
}

// report records the outcome on the results lane and hands it to the adapter.
func (d *Download) report(outcome domain.Outcome) {
	d.once.Do(func() {
		var err error
		switch outcome.Kind {
		case domain.OutcomeCancelled:
			err = d.env.Results.RecordCancelled(d.url)
		case domain.OutcomeSuccess:
			err = d.env.Results.RecordInterim(d.url, outcome.Name)
		default:
			err = d.env.Results.Record(d.url, outcome.Label())
		}
		if err != nil {
			d.env.logger().Error(zerr.With(zerr.Wrap(err, "record outcome"), "url", d.url))
		}

		if outcome.Kind == domain.OutcomePermanentFailure {
			d.env.logger().Warn(fmt.Sprintf("download of %s failed: %v", d.url, outcome.Cause))
		}

		d.out <- outcome
	})
}
