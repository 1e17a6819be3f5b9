package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/ikreach/spatialmath"
	"go.viam.com/ikreach/utils"
)

// printf prints a message with a newline.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// vectorFlag reads an x,y,z flag.
func vectorFlag(c *cli.Context, name string) (r3.Vector, error) {
	vals := c.Float64Slice(name)
	if len(vals) != 3 {
		return r3.Vector{}, errors.Errorf("--%s needs exactly 3 comma separated values, got %d", name, len(vals))
	}
	return r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// orientationFlag reads a roll,pitch,yaw flag in degrees. It returns nil if the flag is not set.
func orientationFlag(c *cli.Context, name string) (spatialmath.Orientation, error) {
	vals := c.Float64Slice(name)
	if len(vals) == 0 {
		return nil, nil
	}
	if len(vals) != 3 {
		return nil, errors.Errorf("--%s needs roll,pitch,yaw, got %d values", name, len(vals))
	}
	rads := utils.DegsToRads(vals)
	return &spatialmath.EulerAngles{Roll: rads[0], Pitch: rads[1], Yaw: rads[2]}, nil
}

func formatJoints(values []float64) string {
	return strings.Join(lo.Map(values, func(v float64, _ int) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}), " ")
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
