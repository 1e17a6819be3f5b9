package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

// OOBErrString is a string that all OOB errors should contain, so that they can be checked for distinct from other errors.
const OOBErrString = "input out of bounds"

// ErrOutOfBounds is wrapped by every error returned for a joint position outside of a bounded joint's limits.
var ErrOutOfBounds = errors.New(OOBErrString)

// ErrIncorrectDoF is wrapped by every error returned for a configuration of the wrong length.
var ErrIncorrectDoF = errors.New("incorrect number of inputs")

// NewIncorrectDoFError returns an error indicating that the number of inputs does not match the
// number of degrees of freedom.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Wrapf(ErrIncorrectDoF, "number of inputs does not match degrees of freedom. Expected %d, given %d", expected, actual)
}

// NewOutOfBoundsError returns an error indicating that joint idx was given a value outside of its limits.
func NewOutOfBoundsError(idx int, value float64, limit Limit) error {
	return errors.Wrap(ErrOutOfBounds, fmt.Sprintf("joint %d: %.5f not within [%.5f, %.5f]", idx, value, limit.Min, limit.Max))
}

// IsStructuralError returns whether err signals a malformed configuration (wrong length or a
// bounded joint out of its limits) rather than a numeric failure.
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrIncorrectDoF) || errors.Is(err, ErrOutOfBounds)
}
