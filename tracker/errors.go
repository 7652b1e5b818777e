package tracker

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/holdings/ledger"
	"github.com/rustyeddy/holdings/store"
)

// AbortError reports that an atomic unit was rolled back because of a
// storage failure. Nothing the operation wrote was committed, so the whole
// operation can be retried.
type AbortError struct {
	Op  string
	Err error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s aborted: %v", e.Op, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// Retryable is always true: replay is idempotent.
func (e *AbortError) Retryable() bool { return true }

// IsRetryable reports whether err came from an aborted unit.
func IsRetryable(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae) && ae.Retryable()
}

// classify wraps err for op. Caller mistakes are returned as is, anything
// else aborted the unit.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrInvalid),
		errors.Is(err, ledger.ErrSyntheticImmutable),
		errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return &AbortError{Op: op, Err: err}
	}
}
