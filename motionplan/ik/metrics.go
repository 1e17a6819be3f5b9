package ik

import (
	"github.com/golang/geo/r3"

	"go.viam.com/ikreach/referenceframe"
	spatial "go.viam.com/ikreach/spatialmath"
	"go.viam.com/ikreach/utils"
)

const orientationDistanceScaling = 10.

// State is a configuration together with the end effector pose it produces.
type State struct {
	Position      spatial.Pose
	Configuration []referenceframe.Input
}

// StateMetric are functions which, given a State, produces some score. Lower is better.
// This is used for gradient descent to converge upon a goal pose, for example.
type StateMetric func(*State) float64

// NewSquaredNormMetric is the default distance function between two poses to be used for gradient
// descent. Components not enforced by constraints do not contribute.
func NewSquaredNormMetric(goal spatial.Pose, constraints *Constraints) StateMetric {
	mask := constraints.mask()
	return func(query *State) float64 {
		pos, rot := residuals(maskedDelta(query.Position, goal, mask))
		// Increase weight for orientation since it's a small number
		return pos.Norm2() + rot.Mul(orientationDistanceScaling).Norm2()
	}
}

// OrientDist returns the arclength between two orientations in degrees.
func OrientDist(o1, o2 spatial.Orientation) float64 {
	return utils.RadToDeg(spatial.QuatToR4AA(spatial.OrientationBetween(o1, o2).Quaternion()).Theta)
}

// maskedDelta returns PoseDelta(from, to) with the unconstrained components zeroed.
func maskedDelta(from, to spatial.Pose, mask [6]bool) []float64 {
	delta := spatial.PoseDelta(from, to)
	for i, enforced := range mask {
		if !enforced {
			delta[i] = 0
		}
	}
	return delta
}

// residuals splits a delta into its position and rotation parts.
func residuals(delta []float64) (r3.Vector, r3.Vector) {
	return r3.Vector{X: delta[0], Y: delta[1], Z: delta[2]}, r3.Vector{X: delta[3], Y: delta[4], Z: delta[5]}
}
