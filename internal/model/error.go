package model

import "fmt"

// Kind is one of the error kinds surfaced identically by the Store, the
// Coordinator, and the Client façade.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindInvalidArgument  Kind = "invalid_argument"
	KindConflict         Kind = "conflict"
	KindLockTimeout      Kind = "lock_timeout"
	KindUnavailable      Kind = "unavailable"
	KindStale            Kind = "stale"
	KindInternal         Kind = "internal"
)

// ClaudiaError is the sole error currency crossing component boundaries.
type ClaudiaError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ClaudiaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClaudiaError) Unwrap() error {
	return e.Cause
}

func newErr(kind Kind, format string, args ...any) *ClaudiaError {
	return &ClaudiaError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *ClaudiaError {
	return newErr(KindNotFound, format, args...)
}

func InvalidArgument(format string, args ...any) *ClaudiaError {
	return newErr(KindInvalidArgument, format, args...)
}

func Conflict(format string, args ...any) *ClaudiaError {
	return newErr(KindConflict, format, args...)
}

func LockTimeout(format string, args ...any) *ClaudiaError {
	return newErr(KindLockTimeout, format, args...)
}

func Unavailable(format string, args ...any) *ClaudiaError {
	return newErr(KindUnavailable, format, args...)
}

func Stale(format string, args ...any) *ClaudiaError {
	return newErr(KindStale, format, args...)
}

// Internal wraps an unexpected I/O or serialization failure.
func Internal(cause error, format string, args ...any) *ClaudiaError {
	e := newErr(KindInternal, format, args...)
	e.Cause = cause
	return e
}

// KindOf returns the Kind of err, or KindInternal if err is not a
// *ClaudiaError.
func KindOf(err error) Kind {
	var ce *ClaudiaError
	if as(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// as walks err's single-Unwrap chain and stores the first *ClaudiaError it
// finds in target. It does not follow multi-error (Unwrap() []error) chains.
func as(err error, target **ClaudiaError) bool {
	for err != nil {
		if ce, ok := err.(*ClaudiaError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
