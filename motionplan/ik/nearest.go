package ik

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"go.viam.com/ikreach/referenceframe"
)

// NearestAngles rewrites, in place, every continuous joint of candidate to the angle congruent
// modulo 2π that is closest to the same joint of reference. Bounded joints are left alone.
func NearestAngles[T constraints.Float](reference, candidate []T, limits []referenceframe.Limit) error {
	if len(reference) != len(limits) || len(candidate) != len(limits) {
		return errors.Wrapf(referenceframe.NewIncorrectDoFError(len(candidate), len(limits)),
			"reference has %d values", len(reference))
	}
	for i, l := range limits {
		if !l.Continuous {
			continue
		}
		candidate[i] = nearestCongruent(reference[i], candidate[i])
	}
	return nil
}

// nearestCongruent returns candidate + 2πk with |result - reference| <= π.
func nearestCongruent[T constraints.Float](reference, candidate T) T {
	ref := float64(reference)
	diff := math.Remainder(float64(candidate)-ref, 2*math.Pi)
	return T(ref + diff)
}
