package domain

import "go.trai.ch/zerr"

var (
	// ErrTransient marks a failure that may succeed when retried (timeouts, HTTP 503).
	ErrTransient = zerr.New("transient failure")

	// ErrPermanent marks a failure that retrying will not fix.
	ErrPermanent = zerr.New("permanent failure")

	// ErrCancelled is reported when a download was cancelled before it reached a result.
	ErrCancelled = zerr.New("cancelled")

	// ErrStorage is returned when the content store fails to persist or move a file.
	ErrStorage = zerr.New("storage error")

	// ErrFetchTimeout is returned by fetchers when a request exceeded its timeout.
	ErrFetchTimeout = zerr.New("fetch timed out")

	// ErrNoURLs is returned when a job is submitted without any URL.
	ErrNoURLs = zerr.New("no urls to fetch")

	// ErrInvalidPolicy is returned when a retry policy has a non-positive timeout or retry count.
	ErrInvalidPolicy = zerr.New("invalid retry policy")

	// ErrQueueClosed is returned when enqueueing onto a closed task queue.
	ErrQueueClosed = zerr.New("task queue closed")

	// ErrCycleDetected is returned when a dependency would make the task graph cyclic.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskStarted is returned when a dependency is added to a task that already left Pending.
	ErrTaskStarted = zerr.New("task already started")

	// ErrTaskEnqueued is returned when a task is enqueued a second time.
	ErrTaskEnqueued = zerr.New("task already enqueued")

	// ErrMissingDependency is returned when a component is constructed without a required collaborator.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrUnknownDigest is returned when a digest algorithm name is not recognised.
	ErrUnknownDigest = zerr.New("unknown digest algorithm")

	// ErrConfigNotFound is returned when an explicitly named configuration file does not exist.
	ErrConfigNotFound = zerr.New("configuration file not found")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrDownloadsFailed is returned by the CLI when at least one URL ended with a failure label.
	ErrDownloadsFailed = zerr.New("some downloads failed")

	// ErrDispatcherClosed is returned by Submit after the dispatcher was shut down.
	ErrDispatcherClosed = zerr.New("dispatcher closed")
)
