// Package referenceframe defines joint limits and joint inputs, the Arm abstraction consumed by
// the IK solvers, and a serial kinematic chain that implements it.
package referenceframe

import (
	"math"

	"go.viam.com/ikreach/utils"
)

// Limit represents the limits of motion for a single joint. A continuous joint has no
// meaningful bound: its angle is only meaningful modulo a full turn and Min/Max are ignored.
type Limit struct {
	Min        float64
	Max        float64
	Continuous bool
}

// ContinuousLimit returns the limit of a joint that can rotate freely.
func ContinuousLimit() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1), Continuous: true}
}

// Contains returns whether the value is an allowed position for the joint.
func (l Limit) Contains(value float64) bool {
	return l.Continuous || (value >= l.Min && value <= l.Max)
}

// Clamp returns value limited to [Min, Max] for a bounded joint, and value for a continuous one.
func (l Limit) Clamp(value float64) float64 {
	if l.Continuous {
		return value
	}
	return math.Max(l.Min, math.Min(l.Max, value))
}

func limitsAlmostEqual(a, b []Limit) bool {
	if len(a) != len(b) {
		return false
	}

	const epsilon = 1e-5
	for idx, x := range a {
		if x.Continuous != b[idx].Continuous {
			return false
		}
		if x.Continuous {
			continue
		}
		if !utils.Float64AlmostEqual(x.Min, b[idx].Min, epsilon) ||
			!utils.Float64AlmostEqual(x.Max, b[idx].Max, epsilon) {
			return false
		}
	}

	return true
}
