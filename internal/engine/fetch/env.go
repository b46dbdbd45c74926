// Package fetch implements the per-URL download pipeline: download with retry,
// hand-off, rename to a digest identifier, and result recording.
package fetch

import (
	"context"
	"io"

	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
)

// Env is what every pipeline of one job shares.
type Env struct {
	JobID     string
	Policy    domain.RetryPolicy
	Fetcher   ports.Fetcher
	Store     ports.ContentStore
	Digester  ports.Digester
	Logger    ports.Logger
	Telemetry ports.Telemetry
	Results   *Results

	// StrictRename records LabelFailed instead of the identifier when a rename fails.
	StrictRename bool
	// Diagnose receives retry and storage events. It may be nil.
	Diagnose func(domain.Diagnostic)
}

func (e *Env) logger() ports.Logger {
	if e.Logger == nil {
		return nopLogger{}
	}
	return e.Logger
}

func (e *Env) diagnose(d domain.Diagnostic) {
	if e.Diagnose == nil {
		return
	}
	d.JobID = e.JobID
	e.Diagnose(d)
}

func (e *Env) record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	if e.Telemetry == nil {
		return ctx, nopVertex{}
	}
	return e.Telemetry.Record(ctx, name, ports.WithGroup(e.JobID))
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

type nopVertex struct{}

func (nopVertex) Stdout() io.Writer { return io.Discard }
func (nopVertex) Stderr() io.Writer { return io.Discard }
func (nopVertex) Log(domain.LogLevel, string) {}
func (nopVertex) Complete(error) {}
func (nopVertex) Cached() {}
