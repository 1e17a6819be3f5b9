// Package ik contains inverse kinematics solvers: a damped least squares Jacobian engine and a
// solver that restarts any engine from random configurations until it converges.
package ik

import (
	"context"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/ikreach/referenceframe"
	"go.viam.com/ikreach/spatialmath"
)

// Solver moves an arm so that its end effector reaches goal. A nil error means the arm now holds
// a configuration reaching goal within the constraints. A *NotConvergedError means no such
// configuration was found, any other error signals a malformed request.
type Solver interface {
	Solve(ctx context.Context, arm referenceframe.Arm, goal spatialmath.Pose, constraints *Constraints) error
}

// Constraints selects which of the six pose components a solver must match, and optionally
// overrides the solver's convergence tolerances. A nil *Constraints means NewDefaultConstraints.
type Constraints struct {
	PositionX bool
	PositionY bool
	PositionZ bool
	RotationX bool
	RotationY bool
	RotationZ bool

	// Distance and angle tolerances, in meters and radians. Zero means the solver's default.
	PositionTolerance    float64
	OrientationTolerance float64
}

// NewDefaultConstraints returns constraints enforcing the full pose.
func NewDefaultConstraints() *Constraints {
	return &Constraints{
		PositionX: true, PositionY: true, PositionZ: true,
		RotationX: true, RotationY: true, RotationZ: true,
	}
}

// NewPositionOnlyConstraints returns constraints that ignore orientation. This is useful for arms
// with too few degrees of freedom to control orientation.
func NewPositionOnlyConstraints() *Constraints {
	return &Constraints{PositionX: true, PositionY: true, PositionZ: true}
}

// mask returns the enforced components in PoseDelta order.
func (c *Constraints) mask() [6]bool {
	if c == nil {
		c = NewDefaultConstraints()
	}
	return [6]bool{c.PositionX, c.PositionY, c.PositionZ, c.RotationX, c.RotationY, c.RotationZ}
}

func (c *Constraints) tolerances(position, orientation float64) (float64, float64) {
	if c == nil {
		return position, orientation
	}
	if c.PositionTolerance > 0 {
		position = c.PositionTolerance
	}
	if c.OrientationTolerance > 0 {
		orientation = c.OrientationTolerance
	}
	return position, orientation
}

// NotConvergedError is returned when a solver could not reach the goal. The diffs are the
// remaining world frame residuals of the last configuration tried.
type NotConvergedError struct {
	Attempts     int
	PositionDiff r3.Vector
	RotationDiff r3.Vector
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("ik did not converge after %d attempts: position diff %v, rotation diff %v",
		e.Attempts, e.PositionDiff, e.RotationDiff)
}

// IsNotConverged returns whether err is, or wraps, a *NotConvergedError.
func IsNotConverged(err error) bool {
	var nc *NotConvergedError
	return errors.As(err, &nc)
}
