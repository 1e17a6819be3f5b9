// Package utils contains small numeric and concurrency helpers shared across packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// DegsToRads converts a slice of degrees to a newly allocated slice of radians.
func DegsToRads(degrees []float64) []float64 {
	rads := make([]float64, len(degrees))
	for i, d := range degrees {
		rads[i] = DegToRad(d)
	}
	return rads
}

// RadsToDegs converts a slice of radians to a newly allocated slice of degrees.
func RadsToDegs(radians []float64) []float64 {
	degs := make([]float64, len(radians))
	for i, r := range radians {
		degs[i] = RadToDeg(r)
	}
	return degs
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// MinInt returns the min of two ints.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
