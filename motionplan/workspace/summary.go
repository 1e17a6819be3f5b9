package workspace

import (
	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/ikreach/spatialmath"
)

// Summary describes the extent of a set of reached positions.
type Summary struct {
	Count  int
	Min    r3.Vector
	Max    r3.Vector
	Mean   r3.Vector
	StdDev r3.Vector
}

// Summarize computes per axis statistics of the positions of poses. An empty set gives a zero Summary.
func Summarize(poses []spatialmath.Pose) (Summary, error) {
	if len(poses) == 0 {
		return Summary{}, nil
	}
	var xs, ys, zs stats.Float64Data
	for _, p := range poses {
		pt := p.Point()
		xs = append(xs, pt.X)
		ys = append(ys, pt.Y)
		zs = append(zs, pt.Z)
	}

	summary := Summary{Count: len(poses)}
	axes := []struct {
		name string
		data stats.Float64Data
		set  func(lo, hi, mean, sd float64)
	}{
		{"x", xs, func(lo, hi, mean, sd float64) {
			summary.Min.X, summary.Max.X, summary.Mean.X, summary.StdDev.X = lo, hi, mean, sd
		}},
		{"y", ys, func(lo, hi, mean, sd float64) {
			summary.Min.Y, summary.Max.Y, summary.Mean.Y, summary.StdDev.Y = lo, hi, mean, sd
		}},
		{"z", zs, func(lo, hi, mean, sd float64) {
			summary.Min.Z, summary.Max.Z, summary.Mean.Z, summary.StdDev.Z = lo, hi, mean, sd
		}},
	}
	for _, axis := range axes {
		lo, err := axis.data.Min()
		if err != nil {
			return Summary{}, errors.Wrapf(err, "min of %s", axis.name)
		}
		hi, err := axis.data.Max()
		if err != nil {
			return Summary{}, errors.Wrapf(err, "max of %s", axis.name)
		}
		mean, err := axis.data.Mean()
		if err != nil {
			return Summary{}, errors.Wrapf(err, "mean of %s", axis.name)
		}
		sd, err := axis.data.StandardDeviation()
		if err != nil {
			return Summary{}, errors.Wrapf(err, "standard deviation of %s", axis.name)
		}
		axis.set(lo, hi, mean, sd)
	}
	return summary, nil
}
