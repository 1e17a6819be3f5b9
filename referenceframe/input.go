package referenceframe

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Input is the position of a single joint. Revolute inputs are in radians.
type Input = float64

// CopyInputs returns a newly allocated copy of the inputs.
func CopyInputs(inputs []Input) []Input {
	out := make([]Input, len(inputs))
	copy(out, inputs)
	return out
}

// InputsL2Distance returns the two-norm between two Input sets, or +Inf if their lengths differ.
func InputsL2Distance(from, to []Input) float64 {
	if len(from) != len(to) {
		return math.Inf(1)
	}
	diff := make([]float64, len(from))
	floats.SubTo(diff, to, from)
	// 2 is the L value returning a standard L2 Normalization
	return floats.Norm(diff, 2)
}
