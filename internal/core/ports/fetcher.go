// Package ports defines the core interfaces for the application.
package ports

import "context"

// Response is the result of a completed HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher retrieves the content behind a URL.
//
//go:generate go run go.uber.org/mock/mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch performs a GET request for url.
	//
	// A response is returned for every status code; classifying it is up to the caller.
	// When the request exceeded its deadline the error wraps domain.ErrFetchTimeout.
	Fetch(ctx context.Context, url string) (*Response, error)
}
