// Package app implements the application layer for haul.
package app

import (
	"context"
	"io"
	"os"
	"time"

	"go.trai.ch/haul/internal/adapters/telemetry/progrock"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/haul/internal/engine/job"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds the dispatcher shutdown after a fetch returned.
const shutdownTimeout = 30 * time.Second

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	fetcher      ports.Fetcher
	stores       ports.StoreFactory
	digesters    ports.DigesterFactory
	telemetry    ports.Telemetry
	stderr       io.Writer
	getwd        func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	fetcher ports.Fetcher,
	stores ports.StoreFactory,
	digesters ports.DigesterFactory,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		fetcher:      fetcher,
		stores:       stores,
		digesters:    digesters,
		telemetry:    telemetry,
		stderr:       os.Stderr,
		getwd:        os.Getwd,
	}
}

// WithStderr redirects progress output. Used for testing.
func (a *App) WithStderr(w io.Writer) *App {
	a.stderr = w
	return a
}

// WithWorkingDir pins the directory configuration is resolved from. Used for testing.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// Overrides holds command line values that take precedence over the configuration.
// A nil field leaves the configured value untouched.
type Overrides struct {
	Output       *string
	Workers      *int
	Jobs         *int
	Timeout      *time.Duration
	Retries      *int
	Digest       *string
	StrictRename *bool
	LogLevel     *string
}

// FetchOptions configuration for the Fetch method.
type FetchOptions struct {
	ConfigPath string
	Overrides  Overrides
	// Progress prints one line per finished download to stderr.
	Progress bool
	// Verbose also echoes retry notices; implies Progress.
	Verbose bool
}

// Report is the outcome of a fetch.
type Report struct {
	JobID   string
	Status  domain.JobStatus
	Results map[string]string
}

// Failed counts the URLs labelled failed.
func (r *Report) Failed() int {
	n := 0
	for _, label := range r.Results {
		if label == domain.LabelFailed {
			n++
		}
	}
	return n
}

// Fetch downloads urls plus the configured ones as a single job. Cancelling
// ctx cancels the job; the partial report is still returned.
func (a *App) Fetch(ctx context.Context, urls []string, opts FetchOptions) (*Report, error) {
	settings, err := a.settings(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return nil, err
	}

	urls = append(append([]string(nil), settings.URLs...), urls...)
	if len(urls) == 0 {
		return nil, zerr.Wrap(domain.ErrNoURLs, "nothing to fetch")
	}

	store, err := a.stores.Open(ctx, settings.Output)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open output")
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.logger.Error(cerr)
		}
	}()

	digester, err := a.digesters.New(settings.Digest)
	if err != nil {
		return nil, err
	}

	telemetry := a.telemetry
	if opts.Progress || opts.Verbose {
		printer := progrock.NewRecorder(progrock.NewPrinter(a.stderr, opts.Verbose))
		defer func() {
			if cerr := printer.Close(); cerr != nil {
				a.logger.Error(zerr.Wrap(cerr, "failed to close progress output"))
			}
		}()
		telemetry = printer
	}

	dispatcher, err := job.NewDispatcher(job.Deps{
		Fetcher:   a.fetcher,
		Store:     store,
		Digester:  digester,
		Logger:    a.logger,
		Telemetry: telemetry,
	},
		job.WithJobConcurrency(settings.Jobs),
		job.WithWorkers(settings.Workers),
		job.WithStrictRename(settings.StrictRename),
		job.WithDiagnostics(func(d domain.Diagnostic) {
			a.logger.Warn(d.String())
		}),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if serr := dispatcher.Shutdown(sctx); serr != nil {
			a.logger.Error(serr)
		}
	}()

	results := make(chan map[string]string, 1)
	j, err := dispatcher.Submit(urls, settings.Timeout, settings.Retries, func(m map[string]string) {
		results <- m
	})
	if err != nil {
		return nil, err
	}

	// The job always reaches Done: either it completes or the watcher cancels it.
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.Go(func() error {
		select {
		case <-j.Done():
		case <-ctx.Done():
			a.logger.Warn("interrupted, cancelling job " + j.ID())
			j.Cancel()
		}
		return nil
	})
	g.Go(func() error {
		return j.Wait(gctx)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{JobID: j.ID(), Status: j.State(), Results: <-results}, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	Output     *string
}

// Clean removes every entry of the configured output.
func (a *App) Clean(ctx context.Context, opts CleanOptions) error {
	settings, err := a.settings(opts.ConfigPath, Overrides{Output: opts.Output})
	if err != nil {
		return err
	}

	store, err := a.stores.Open(ctx, settings.Output)
	if err != nil {
		return zerr.Wrap(err, "failed to open output")
	}
	defer store.Close() //nolint:errcheck // Best effort close in defer

	a.logger.Info("removing contents of " + settings.Output)
	if err := store.RemoveAll(ctx); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clean output"), "output", settings.Output)
	}
	a.logger.Info("removed contents of " + settings.Output)
	return nil
}

func (a *App) settings(configPath string, o Overrides) (*domain.Settings, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	settings, err := a.configLoader.Load(cwd, configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	o.apply(settings)

	if err := settings.Policy().Validate(); err != nil {
		return nil, err
	}
	if ls, ok := a.logger.(interface{ SetLevel(domain.LogLevel) }); ok {
		ls.SetLevel(settings.LogLevel)
	}
	return settings, nil
}

func (o Overrides) apply(s *domain.Settings) {
	if o.Output != nil {
		s.Output = *o.Output
	}
	if o.Workers != nil {
		s.Workers = *o.Workers
	}
	if o.Jobs != nil {
		s.Jobs = *o.Jobs
	}
	if o.Timeout != nil {
		s.Timeout = *o.Timeout
	}
	if o.Retries != nil {
		s.Retries = *o.Retries
	}
	if o.Digest != nil {
		s.Digest = *o.Digest
	}
	if o.StrictRename != nil {
		s.StrictRename = *o.StrictRename
	}
	if o.LogLevel != nil {
		s.LogLevel = domain.ParseLogLevel(*o.LogLevel)
	}
}
