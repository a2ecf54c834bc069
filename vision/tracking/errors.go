package tracking

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfiguration is returned for malformed dimensions, channel lists,
	// bin counts, ranges or candidate lists. It is a caller error and is reported
	// before any work starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrPreconditionViolation is returned when a Tracker operation is invoked in
	// a state that does not allow it.
	ErrPreconditionViolation = errors.New("precondition violation")
	// ErrDimensionMismatch is returned when a frame is incompatible with the
	// color model or the search area.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

func newInvalidConfigurationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}

func newPreconditionError(op string, state State) error {
	return errors.Wrapf(ErrPreconditionViolation, "%s not allowed in state %s", op, state)
}

func newDimensionMismatchError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDimensionMismatch, format, args...)
}
