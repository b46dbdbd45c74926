package domain_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestRetryPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		retries int
		wantErr bool
	}{
		{"Valid", time.Second, 3, false},
		{"SingleAttempt", time.Second, 1, false},
		{"ZeroTimeout", 0, 3, true},
		{"NegativeTimeout", -time.Second, 3, true},
		{"ZeroRetries", time.Second, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := domain.NewRetryPolicy(tt.timeout, tt.retries)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.timeout, p.Timeout)
				assert.Equal(t, tt.retries, p.MaxRetries)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
		})
	}
}

func TestRetryPolicy_InvalidMetadata(t *testing.T) {
	_, err := domain.NewRetryPolicy(time.Second, 0)
	require.Error(t, err)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, 0, zErr.Metadata()["max_retries"])
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := domain.RetryPolicy{Timeout: 2 * time.Second, MaxRetries: 3}

	assert.Equal(t, time.Duration(0), p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 6*time.Second, p.Backoff(3))

	assert.True(t, p.ShouldRetry(1))
	assert.True(t, p.ShouldRetry(2))
	assert.False(t, p.ShouldRetry(3))
}

func TestOutcome_Label(t *testing.T) {
	tests := []struct {
		name    string
		outcome domain.Outcome
		label   string
		errKind error
	}{
		{"Success", domain.Success("a_b"), "a_b", nil},
		{"Temporary", domain.TemporaryFailure(errors.New("503")), domain.LabelFailed, domain.ErrTransient},
		{"Permanent", domain.PermanentFailure(nil), domain.LabelFailed, domain.ErrPermanent},
		{"Cancelled", domain.Cancelled(), domain.LabelCancelled, domain.ErrCancelled},
		{"ZeroValue", domain.Outcome{}, domain.LabelCancelled, domain.ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, tt.outcome.Label())
			if tt.errKind == nil {
				assert.NoError(t, tt.outcome.Err())
				return
			}
			assert.ErrorIs(t, tt.outcome.Err(), tt.errKind)
		})
	}
}

func TestResultStore(t *testing.T) {
	s := domain.NewResultStore()

	s.Record("u1", "u1_file")
	s.Record("u1", "digest")
	assert.False(t, s.RecordCancelled("u1"), "cancelled must not overwrite a recorded label")
	assert.True(t, s.RecordCancelled("u2"))
	assert.Equal(t, 2, s.Len())

	snap := s.Snapshot()
	snap["u3"] = "mutated"
	assert.NotContains(t, s.Snapshot(), "u3", "snapshot must be a copy")
	assert.Equal(t, map[string]string{"u1": "digest", "u2": domain.LabelCancelled}, s.Snapshot())
}

func TestResultStore_Interim(t *testing.T) {
	tests := []struct {
		name   string
		before func(s *domain.ResultStore)
		want   string
	}{
		{
			name:   "CancelReplacesInterim",
			before: func(s *domain.ResultStore) { s.RecordInterim("u", "u_file") },
			want:   domain.LabelCancelled,
		},
		{
			name: "CancelKeepsDigest",
			before: func(s *domain.ResultStore) {
				s.RecordInterim("u", "u_file")
				s.Record("u", "digest")
			},
			want: "digest",
		},
		{
			name:   "CancelKeepsFailed",
			before: func(s *domain.ResultStore) { s.Record("u", domain.LabelFailed) },
			want:   domain.LabelFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NewResultStore()
			tt.before(s)
			s.RecordCancelled("u")
			assert.Equal(t, map[string]string{"u": tt.want}, s.Snapshot())
		})
	}
}

func TestResultStore_InterimAfterCancel(t *testing.T) {
	s := domain.NewResultStore()

	require.True(t, s.RecordCancelled("u"))
	assert.False(t, s.RecordInterim("u", "u_file"), "a late download must not hide the cancellation")
	assert.Equal(t, map[string]string{"u": domain.LabelCancelled}, s.Snapshot())
}

func TestResultStore_ConcurrentWrites(t *testing.T) {
	s := domain.NewResultStore()

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Record(fmt.Sprintf("url-%d", i), "ok")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, s.Len())
}

func TestSanitizeURL(t *testing.T) {
	assert.Equal(t, "http:__example.com_a_b.txt", domain.SanitizeURL("http://example.com/a/b.txt"))
	assert.Equal(t, "plain", domain.SanitizeURL("plain"))
}

func TestDiagnostic_String(t *testing.T) {
	d := domain.Diagnostic{
		JobID:   "j1",
		URL:     "http://x/y",
		Kind:    domain.DiagnosticRetry,
		Attempt: 2,
		Err:     errors.New("boom"),
	}
	assert.Equal(t, "job=j1 kind=retry url=http://x/y attempt=2 error=boom", d.String())
	assert.Equal(t, "job=j1 kind=session_invalidated", domain.Diagnostic{JobID: "j1", Kind: domain.DiagnosticSessionInvalidated}.String())
}
