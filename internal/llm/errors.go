package llm

import (
	"errors"
	"fmt"
	"time"
)

// TransientError marks a failure worth retrying: rate limits, server errors,
// transport hiccups. RetryAfter carries the server's backoff hint when one
// was given, zero otherwise.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("llm: transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FatalError marks a failure that will not improve on retry: bad requests,
// authentication problems, missing models.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("llm: fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// RetryAfterHint extracts the server backoff hint from err, zero when none.
func RetryAfterHint(err error) time.Duration {
	var te *TransientError
	if errors.As(err, &te) {
		return te.RetryAfter
	}
	return 0
}
