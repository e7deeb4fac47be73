// Package errors defines the sentinel errors and typed error wrappers used
// across the engine. Structural errors and port failures are wrapped with
// github.com/pkg/errors so a failing session carries a stack trace to the
// point of detection, while the sentinel values below remain comparable
// with errors.Is.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// Structural errors — detected before any credit is spent.
var (
	// ErrDuplicateCanonicalID is returned when two named roots hash to
	// the same canonical id.
	ErrDuplicateCanonicalID = stderrors.New("duplicate canonical id among named roots")

	// ErrMissingExclusionClause is returned when a root has no
	// exclusion clause.
	ErrMissingExclusionClause = stderrors.New("root missing exclusion clause")

	// ErrInvalidHypothesisSet is returned for any other structural
	// malformation of the request's hypothesis set.
	ErrInvalidHypothesisSet = stderrors.New("invalid hypothesis set")

	// ErrUnknownConfigKey names a configuration bundle key the engine
	// does not recognize. config.Load does not return it: it reports
	// unknown keys as a wrapped YAML decode error.
	ErrUnknownConfigKey = stderrors.New("unknown configuration key")
)

// Invariant violations — detected during the update pipeline.
var (
	// ErrLedgerDrift is returned when the ledger sum deviates from 1.0
	// by more than the allowed tolerance after absorber enforcement.
	ErrLedgerDrift = stderrors.New("ledger sum drifted beyond tolerance")

	// ErrNegativeProbability is returned when a computed probability
	// would be negative prior to clamping.
	ErrNegativeProbability = stderrors.New("computed probability is negative")
)

// Port failures.
var (
	// ErrPortTimeout names an Evaluator or Decomposer call that does not
	// return within the caller's context deadline. No code in this
	// module returns it.
	ErrPortTimeout = stderrors.New("port call timed out")

	// ErrPortTransport is returned for any other port invocation
	// failure (transport error, panic recovery, etc).
	ErrPortTransport = stderrors.New("port call failed")

	// ErrAuditSinkFailed names an AuditSink.Append failure. RunSession
	// does not return it: append failures are logged or ignored and the
	// session continues.
	ErrAuditSinkFailed = stderrors.New("audit sink append failed")
)

// StructuralError carries the stop reason and the typed issue list a
// failed gate produced. It wraps one of the sentinel errors above via
// pkg/errors so callers retain a stack trace.
type StructuralError struct {
	StopReason string
	Issues     []Issue
	cause      error
}

// Issue is a single typed finding from a structural gate, e.g. a MECE
// pair overlap violation or a missing contender component.
type Issue struct {
	Code    string
	Detail  string
	RootA   string
	RootB   string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return e.cause.Error()
}

// Unwrap exposes the wrapped sentinel so errors.Is/As keep working.
func (e *StructuralError) Unwrap() error { return e.cause }

// NewStructuralError builds a StructuralError wrapping sentinel with a
// stack trace captured at the call site.
func NewStructuralError(stopReason string, sentinel error, issues []Issue) *StructuralError {
	return &StructuralError{
		StopReason: stopReason,
		Issues:     issues,
		cause:      pkgerrors.WithStack(sentinel),
	}
}

// SessionError wraps a port failure with the operation that triggered it
// and whether its credit was refunded.
type SessionError struct {
	Operation       string
	TargetID        string
	CreditRefunded  bool
	cause           error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.cause.Error()
}

// Unwrap exposes the wrapped error so errors.Is/As keep working.
func (e *SessionError) Unwrap() error { return e.cause }

// NewSessionError wraps a port error with pkg/errors context.
func NewSessionError(operation, targetID string, refunded bool, cause error) *SessionError {
	return &SessionError{
		Operation:      operation,
		TargetID:       targetID,
		CreditRefunded: refunded,
		cause:          pkgerrors.Wrapf(cause, "port call failed during %s on %s", operation, targetID),
	}
}

// Is reports whether err matches target using stdlib errors.Is semantics.
// Re-exported so callers importing this package do not also need the
// stdlib errors package for the common case.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As reports whether err can be assigned to target using stdlib errors.As
// semantics.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Wrap annotates err with message and a stack trace via pkg/errors,
// re-exported so internal packages need only import this package.
func Wrap(err error, message string) error { return pkgerrors.Wrap(err, message) }

// Wrapf annotates err with a formatted message and a stack trace.
func Wrapf(err error, format string, args ...interface{}) error {
	return pkgerrors.Wrapf(err, format, args...)
}
