package ik

import (
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"

	"go.viam.com/ikreach/referenceframe"
)

// RandomJointPositions draws one configuration uniformly from the given limits. Continuous joints
// are drawn from [-π, π). A nil randSource uses a fixed seed so results are reproducible.
func RandomJointPositions[T constraints.Float](limits []referenceframe.Limit, randSource *rand.Rand) []T {
	if randSource == nil {
		//nolint:gosec
		randSource = rand.New(rand.NewSource(1))
	}
	positions := make([]T, 0, len(limits))
	for _, l := range limits {
		if l.Continuous {
			positions = append(positions, T(-math.Pi+2*math.Pi*randSource.Float64()))
			continue
		}
		// Float64 is in [0, 1), clamp covers rounding at the top of the range
		v := l.Min + (l.Max-l.Min)*randSource.Float64()
		positions = append(positions, T(l.Clamp(v)))
	}
	return positions
}
