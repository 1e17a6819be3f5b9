// Package workspace maps the region of space an arm can reach by solving inverse kinematics over a
// regular grid of target positions.
package workspace

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// gridEpsilon absorbs floating point error in (max-min)/step so that an exact multiple of step
// never produces an extra point at max.
const gridEpsilon = 1e-9

// maxGridPoints bounds both the points along one axis and the points of the whole box.
const maxGridPoints = math.MaxInt32

// gridPoints returns lo, lo+step, ... for every value strictly below hi. Values are computed from an
// integer index rather than by accumulation.
func gridPoints(lo, hi, step float64) []float64 {
	n := int(math.Ceil((hi-lo)/step - gridEpsilon))
	if n <= 0 {
		return nil
	}
	points := make([]float64, n)
	for i := range points {
		points[i] = lo + float64(i)*step
	}
	return points
}

func validateBox(minPoint, maxPoint r3.Vector, step float64) error {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return errors.Errorf("grid step must be positive and finite, got %f", step)
	}
	total := 1.
	for _, axis := range []struct {
		name     string
		min, max float64
	}{
		{"x", minPoint.X, maxPoint.X},
		{"y", minPoint.Y, maxPoint.Y},
		{"z", minPoint.Z, maxPoint.Z},
	} {
		if math.IsNaN(axis.min) || math.IsNaN(axis.max) || math.IsInf(axis.min, 0) || math.IsInf(axis.max, 0) {
			return errors.Errorf("%s bounds must be finite, got [%f, %f)", axis.name, axis.min, axis.max)
		}
		if axis.min > axis.max {
			return errors.Errorf("%s min %f is greater than max %f", axis.name, axis.min, axis.max)
		}
		// a span overflowing to +Inf is rejected here too
		perAxis := math.Ceil((axis.max - axis.min) / step)
		if perAxis > maxGridPoints {
			return errors.Errorf("step %g gives %g points along %s, more than %d", step, perAxis, axis.name, maxGridPoints)
		}
		total *= perAxis
	}
	if total > maxGridPoints {
		return errors.Errorf("step %g gives %g grid points, more than %d", step, total, maxGridPoints)
	}
	return nil
}
