// Package httpfetch implements ports.Fetcher over net/http.
package httpfetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.trai.ch/haul/internal/build"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fetcher = (*Client)(nil)

// Options configures the HTTP client.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	MaxIdleConnsPerHost int
	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 32,
		UserAgent:           "haul/" + build.Version,
	}
}

// Client fetches URLs with plain GET requests. Deadlines come from the
// caller's context; the client itself sets no overall timeout.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a new Client with the given options.
func NewClient(opts Options) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		client:    &http.Client{Transport: transport},
		userAgent: opts.UserAgent,
	}
}

// NewClientWith wraps an existing http.Client.
func NewClientWith(client *http.Client) *Client {
	return &Client{client: client}
}

// Fetch performs a GET request for url and reads the whole body.
func (c *Client) Fetch(ctx context.Context, url string) (*ports.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create request"), "url", url)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err, url)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, err, url)
	}

	return &ports.Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// classify maps transport errors onto the domain. Deadline expiry becomes
// ErrFetchTimeout; caller cancellation is returned as context.Canceled.
func classify(ctx context.Context, err error, url string) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return zerr.With(zerr.Wrap(context.Canceled, "request cancelled"), "url", url)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return zerr.With(zerr.Wrap(domain.ErrFetchTimeout, "request timed out"), "url", url)
	}
	return zerr.With(zerr.Wrap(err, "request failed"), "url", url)
}
