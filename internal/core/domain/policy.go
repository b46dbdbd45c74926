package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// RetryPolicy controls how a download is retried. It is immutable and shared by
// every download of a job.
type RetryPolicy struct {
	// Timeout bounds a single fetch attempt and is the backoff unit.
	Timeout time.Duration
	// MaxRetries is the total number of attempts, including the first one.
	MaxRetries int
}

// NewRetryPolicy builds a validated RetryPolicy.
func NewRetryPolicy(timeout time.Duration, maxRetries int) (RetryPolicy, error) {
	p := RetryPolicy{Timeout: timeout, MaxRetries: maxRetries}
	if err := p.Validate(); err != nil {
		return RetryPolicy{}, err
	}
	return p, nil
}

// Validate reports ErrInvalidPolicy when the timeout or the retry count is not positive.
func (p RetryPolicy) Validate() error {
	if p.Timeout <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "timeout must be positive"), "timeout", p.Timeout.String())
	}
	if p.MaxRetries < 1 {
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "at least one attempt is required"), "max_retries", p.MaxRetries)
	}
	return nil
}

// Backoff returns the pause after the given failed attempt (1-based).
// The delay grows linearly: attempt * Timeout.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(attempt) * p.Timeout
}

// ShouldRetry reports whether another attempt may follow the given one.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxRetries
}
