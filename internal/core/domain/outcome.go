package domain

import (
	"go.trai.ch/zerr"
)

const (
	// LabelFailed is recorded for URLs that could not be fetched.
	LabelFailed = "failed"
	// LabelCancelled is recorded for URLs whose download was cancelled.
	LabelCancelled = "cancelled"
)

// OutcomeKind classifies the terminal state of a download.
type OutcomeKind int

const (
	// OutcomeCancelled means the download was aborted by cancellation.
	// It is the zero value so a missing outcome reads as cancelled.
	OutcomeCancelled OutcomeKind = iota
	// OutcomeSuccess means the body was stored under Outcome.Name.
	OutcomeSuccess
	// OutcomeTemporaryFailure means the attempt failed in a retryable way.
	OutcomeTemporaryFailure
	// OutcomePermanentFailure means the download failed for good.
	OutcomePermanentFailure
)

// String returns the string representation of the OutcomeKind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTemporaryFailure:
		return "temporary_failure"
	case OutcomePermanentFailure:
		return "permanent_failure"
	default:
		return "cancelled"
	}
}

// Outcome is the result of one download attempt or of a whole download.
type Outcome struct {
	Kind OutcomeKind
	// Name is the stored file name, set for OutcomeSuccess.
	Name string
	// Cause is the underlying error for failures.
	Cause error
}

// Success returns an outcome for a body stored under name.
func Success(name string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Name: name}
}

// TemporaryFailure returns a retryable failure outcome.
func TemporaryFailure(cause error) Outcome {
	return Outcome{Kind: OutcomeTemporaryFailure, Cause: cause}
}

// PermanentFailure returns a non-retryable failure outcome.
func PermanentFailure(cause error) Outcome {
	return Outcome{Kind: OutcomePermanentFailure, Cause: cause}
}

// Cancelled returns a cancellation outcome.
func Cancelled() Outcome {
	return Outcome{Kind: OutcomeCancelled}
}

// Label is the value recorded in the result map for this outcome.
func (o Outcome) Label() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Name
	case OutcomeCancelled:
		return LabelCancelled
	default:
		return LabelFailed
	}
}

// Err converts the outcome to an error classified by the domain taxonomy.
// It returns nil for a success.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeTemporaryFailure:
		return o.wrap(ErrTransient)
	case OutcomePermanentFailure:
		return o.wrap(ErrPermanent)
	default:
		return ErrCancelled
	}
}

func (o Outcome) wrap(kind error) error {
	err := zerr.Wrap(kind, "download failed")
	if o.Cause != nil {
		err = zerr.With(err, "cause", o.Cause.Error())
	}
	return err
}
