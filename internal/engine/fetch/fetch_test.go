package fetch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/haul/internal/core/ports/mocks"
	"go.trai.ch/haul/internal/engine/fetch"
	"go.trai.ch/haul/internal/engine/taskqueue"
	"go.uber.org/mock/gomock"
)

const testURL = "http://example.com/files/a.txt"

type harness struct {
	env      *fetch.Env
	work     *taskqueue.Queue
	lane     *taskqueue.Queue
	fetcher  *mocks.MockFetcher
	content  *mocks.MockContentStore
	digester *mocks.MockDigester

	mu    sync.Mutex
	diags []domain.Diagnostic
}

func newHarness(t *testing.T, policy domain.RetryPolicy) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		work:     taskqueue.NewQueue(4, taskqueue.WithName("work")),
		lane:     taskqueue.NewQueue(1, taskqueue.WithName("results")),
		fetcher:  mocks.NewMockFetcher(ctrl),
		content:  mocks.NewMockContentStore(ctrl),
		digester: mocks.NewMockDigester(ctrl),
	}
	h.env = &fetch.Env{
		JobID:    "job-1",
		Policy:   policy,
		Fetcher:  h.fetcher,
		Store:    h.content,
		Digester: h.digester,
		Results:  fetch.NewResults(h.lane, domain.NewResultStore()),
		Diagnose: func(d domain.Diagnostic) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.diags = append(h.diags, d)
		},
	}
	return h
}

func (h *harness) run(t *testing.T, urls ...string) map[string]string {
	t.Helper()
	for _, url := range urls {
		require.NoError(t, h.work.Enqueue(fetch.NewFetchTask(h.env, h.work, url).Task()))
	}
	require.NoError(t, h.work.Wait(t.Context()))
	require.NoError(t, h.env.Results.Drain(t.Context()))
	return h.env.Results.Snapshot()
}

func (h *harness) diagnostics() []domain.Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Diagnostic(nil), h.diags...)
}

func ok(body string) *ports.Response {
	return &ports.Response{StatusCode: 200, Body: []byte(body)}
}

func status(code int) *ports.Response {
	return &ports.Response{StatusCode: code}
}

func TestFetch_Success(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 3})
		name := domain.SanitizeURL(testURL)

		gomock.InOrder(
			h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(ok("hello"), nil),
			h.content.EXPECT().Store(gomock.Any(), name, []byte("hello")).Return(nil),
			h.digester.EXPECT().Digest(testURL).Return("d1g3st"),
			h.content.EXPECT().MoveOrReplace(gomock.Any(), name, "d1g3st").Return(nil),
		)

		results := h.run(t, testURL)
		assert.Equal(t, map[string]string{testURL: "d1g3st"}, results)
		assert.Empty(t, h.diagnostics())
	})
}

func TestFetch_RetriesWithLinearBackoff(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: 2 * time.Second, MaxRetries: 3})
		start := time.Now()
		var attempts []time.Duration
		track := func(resp *ports.Response) func(context.Context, string) (*ports.Response, error) {
			return func(context.Context, string) (*ports.Response, error) {
				attempts = append(attempts, time.Since(start))
				return resp, nil
			}
		}

		gomock.InOrder(
			h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).DoAndReturn(track(status(503))),
			h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).DoAndReturn(track(status(503))),
			h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).DoAndReturn(track(ok("body"))),
		)
		h.content.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		h.digester.EXPECT().Digest(testURL).Return("id")
		h.content.EXPECT().MoveOrReplace(gomock.Any(), gomock.Any(), "id").Return(nil)

		results := h.run(t, testURL)
		assert.Equal(t, map[string]string{testURL: "id"}, results)
		// Attempt k is followed by a pause of k*Timeout.
		assert.Equal(t, []time.Duration{0, 2 * time.Second, 6 * time.Second}, attempts)

		diags := h.diagnostics()
		require.Len(t, diags, 2)
		for i, d := range diags {
			assert.Equal(t, domain.DiagnosticRetry, d.Kind)
			assert.Equal(t, i+1, d.Attempt)
			assert.Equal(t, "job-1", d.JobID)
		}
	})
}

func TestFetch_RetriesExhausted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: 2 * time.Second, MaxRetries: 3})
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(status(503), nil).Times(3)

		start := time.Now()
		results := h.run(t, testURL)

		assert.Equal(t, map[string]string{testURL: domain.LabelFailed}, results)
		assert.Equal(t, 6*time.Second, time.Since(start), "no backoff after the last attempt")
	})
}

func TestFetch_SingleAttemptPolicy(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 1})
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(status(503), nil).Times(1)

		results := h.run(t, testURL)
		assert.Equal(t, map[string]string{testURL: domain.LabelFailed}, results)
	})
}

func TestFetch_TimeoutIsRetried(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 2})
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).DoAndReturn(func(ctx context.Context, _ string) (*ports.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Times(2)

		start := time.Now()
		results := h.run(t, testURL)

		assert.Equal(t, map[string]string{testURL: domain.LabelFailed}, results)
		// 1s attempt, 1s backoff, 1s attempt.
		assert.Equal(t, 3*time.Second, time.Since(start))
	})
}

func TestFetch_FetchTimeoutErrorIsRetried(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 2})
		gomock.InOrder(
			h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(nil, domain.ErrFetchTimeout),
			h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(ok("late"), nil),
		)
		h.content.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		h.digester.EXPECT().Digest(testURL).Return("id")
		h.content.EXPECT().MoveOrReplace(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		assert.Equal(t, map[string]string{testURL: "id"}, h.run(t, testURL))
	})
}

func TestFetch_PermanentFailures(t *testing.T) {
	tests := []struct {
		name string
		resp *ports.Response
		err  error
	}{
		{"NotFound", status(404), nil},
		{"ServerError", status(500), nil},
		{"Transport", nil, errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 5})
				h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(tt.resp, tt.err).Times(1)

				results := h.run(t, testURL)
				assert.Equal(t, map[string]string{testURL: domain.LabelFailed}, results)
				assert.Empty(t, h.diagnostics())
			})
		})
	}
}

func TestFetch_StoreFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 3})
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(ok("x"), nil)
		h.content.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrStorage)

		results := h.run(t, testURL)
		assert.Equal(t, map[string]string{testURL: domain.LabelFailed}, results)

		diags := h.diagnostics()
		require.Len(t, diags, 1)
		assert.Equal(t, domain.DiagnosticStorageError, diags[0].Kind)
		assert.ErrorIs(t, diags[0].Err, domain.ErrStorage)
	})
}

func TestFetch_RenameFailure(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		want   string
	}{
		{"Lenient", false, "id"},
		{"Strict", true, domain.LabelFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 3})
				h.env.StrictRename = tt.strict

				h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(ok("x"), nil)
				h.content.EXPECT().Store(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				h.digester.EXPECT().Digest(testURL).Return("id")
				h.content.EXPECT().MoveOrReplace(gomock.Any(), gomock.Any(), "id").Return(domain.ErrStorage)

				results := h.run(t, testURL)
				assert.Equal(t, map[string]string{testURL: tt.want}, results)

				diags := h.diagnostics()
				require.Len(t, diags, 1)
				assert.Equal(t, domain.DiagnosticStorageError, diags[0].Kind)
				assert.Equal(t, testURL, diags[0].URL)
			})
		})
	}
}

func TestFetch_CancelDuringBackoff(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: 10 * time.Second, MaxRetries: 3})
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(status(503), nil).Times(1)

		start := time.Now()
		task := fetch.NewFetchTask(h.env, h.work, testURL)
		require.NoError(t, h.work.Enqueue(task.Task()))

		// The download is now sleeping in its first backoff.
		synctest.Wait()
		task.Task().Cancel()

		require.NoError(t, h.work.Wait(t.Context()))
		require.NoError(t, h.env.Results.Drain(t.Context()))

		assert.Equal(t, map[string]string{testURL: domain.LabelCancelled}, h.env.Results.Snapshot())
		assert.Less(t, time.Since(start), 10*time.Second)
	})
}

func TestFetch_CancelInFlight(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Minute, MaxRetries: 3})
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).DoAndReturn(func(ctx context.Context, _ string) (*ports.Response, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		task := fetch.NewFetchTask(h.env, h.work, testURL)
		require.NoError(t, h.work.Enqueue(task.Task()))
		synctest.Wait()
		h.work.CancelAll()

		require.NoError(t, h.work.Wait(t.Context()))
		require.NoError(t, h.env.Results.Drain(t.Context()))
		assert.Equal(t, map[string]string{testURL: domain.LabelCancelled}, h.env.Results.Snapshot())
	})
}

func TestDownload_CancelledBeforeStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 3})

		d := fetch.NewDownload(h.env, testURL)
		d.Task().Cancel()

		select {
		case outcome := <-d.Outcome():
			assert.Equal(t, domain.OutcomeCancelled, outcome.Kind)
		default:
			t.Fatal("a cancelled download must still report")
		}

		require.NoError(t, h.env.Results.Drain(t.Context()))
		assert.Equal(t, map[string]string{testURL: domain.LabelCancelled}, h.env.Results.Snapshot())
	})
}

func TestDownload_RecordsVertex(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 1})
		telemetry := mocks.NewMockTelemetry(ctrl)
		vertex := mocks.NewMockVertex(ctrl)
		h.env.Telemetry = telemetry

		telemetry.EXPECT().Record(gomock.Any(), testURL, gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ string, _ ...ports.VertexOption) (context.Context, ports.Vertex) {
				return ctx, vertex
			})
		vertex.EXPECT().Complete(gomock.Not(gomock.Nil()))
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(status(404), nil)

		d := fetch.NewDownload(h.env, testURL)
		require.NoError(t, h.work.Enqueue(d.Task()))
		require.NoError(t, h.work.Wait(t.Context()))

		outcome := <-d.Outcome()
		assert.Equal(t, domain.OutcomePermanentFailure, outcome.Kind)
		assert.ErrorIs(t, outcome.Err(), domain.ErrPermanent)
	})
}

func TestResults_FIFO(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		lane := taskqueue.NewQueue(1)
		results := fetch.NewResults(lane, domain.NewResultStore())

		require.NoError(t, results.RecordInterim(testURL, "interim"))
		require.NoError(t, results.Record(testURL, "final"))
		require.NoError(t, results.RecordCancelled(testURL))
		require.NoError(t, results.Drain(t.Context()))

		assert.Equal(t, map[string]string{testURL: "final"}, results.Snapshot())
	})
}

func TestFetch_CancelledBeforeStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 1})

		h.work.Suspend()
		task := fetch.NewFetchTask(h.env, h.work, testURL)
		require.NoError(t, h.work.Enqueue(task.Task()))
		task.Task().Cancel()

		require.NoError(t, h.work.Wait(t.Context()))
		require.NoError(t, h.env.Results.Drain(t.Context()))
		assert.Equal(t, map[string]string{testURL: domain.LabelCancelled}, h.env.Results.Snapshot())
	})
}

func TestDownload_PanicIsRecordedAsFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 1})
		// A nil response without an error makes the classification panic.
		h.fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(nil, nil)

		results := h.run(t, testURL)
		assert.Equal(t, map[string]string{testURL: domain.LabelFailed}, results)
	})
}

func TestRename_CancelledBeforeStartReplacesInterim(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, domain.RetryPolicy{Timeout: time.Second, MaxRetries: 1})

		require.NoError(t, h.env.Results.RecordInterim(testURL, domain.SanitizeURL(testURL)))
		rename := fetch.NewRename(h.env, testURL)
		rename.Task().Cancel()

		require.NoError(t, h.env.Results.Drain(t.Context()))
		assert.Equal(t, map[string]string{testURL: domain.LabelCancelled}, h.env.Results.Snapshot())
	})
}
