package queue

import "github.com/pkg/errors"

// ErrStoreUnavailable is returned (wrapped with context via pkg/errors)
// when a backing-store primitive fails. The broker never retries store
// operations internally; this propagates straight to the caller.
var ErrStoreUnavailable = errors.New("queue: store unavailable")

// ErrInvalidArgument is returned by AddJob when options fail validation
// (negative delay/priority, non-positive maxRetries).
var ErrInvalidArgument = errors.New("queue: invalid argument")

func errInvalidArgument(reason string) error {
	return errors.Wrap(ErrInvalidArgument, reason)
}

func errStoreUnavailable(op string, err error) error {
	return errors.Wrapf(ErrStoreUnavailable, "%s: %v", op, err)
}

// errTimeout is the synthesized cause CheckStalled passes to FailJob. It
// is indistinguishable from a processor error to the retry logic.
var errTimeout = errors.New("queue: job lease exceeded jobTimeout")

