package workspace

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/ikreach/logging"
	"go.viam.com/ikreach/motionplan/ik"
	"go.viam.com/ikreach/referenceframe"
	"go.viam.com/ikreach/spatialmath"
	"go.viam.com/ikreach/utils"
)

// Sampler finds which points of a box an arm can reach with a given solver. Slices of the box
// along z are solved in parallel, each on a private clone of the arm.
type Sampler struct {
	solver      ik.Solver
	parallelism int
	logger      logging.Logger
}

// NewSampler returns a Sampler using solver for every grid point. A parallelism of zero or less
// means utils.ParallelFactor. A nil logger discards all logs.
func NewSampler(solver ik.Solver, parallelism int, logger logging.Logger) *Sampler {
	if logger == nil {
		logger = logging.NewBlankLogger("")
	}
	return &Sampler{solver: solver, parallelism: parallelism, logger: logger}
}

// SampleReachable tries to solve for every grid point of the half-open box [minPoint, maxPoint)
// spaced step apart, keeping the orientation of referencePose. Before each point the arm is reset
// to the configuration it had when SampleReachable was called. It returns the poses that were
// solved, ordered by z, then y, then x. Points the solver could not converge on are left out;
// any other solver error aborts the sample. The given arm is never modified.
func (s *Sampler) SampleReachable(
	ctx context.Context,
	arm referenceframe.Arm,
	referencePose spatialmath.Pose,
	constraints *ik.Constraints,
	minPoint, maxPoint r3.Vector,
	step float64,
) ([]spatialmath.Pose, error) {
	if err := validateBox(minPoint, maxPoint, step); err != nil {
		return nil, err
	}
	xs := gridPoints(minPoint.X, maxPoint.X, step)
	ys := gridPoints(minPoint.Y, maxPoint.Y, step)
	zs := gridPoints(minPoint.Z, maxPoint.Z, step)
	initial := arm.JointPositions()
	orientation := referencePose.Orientation()

	s.logger.Infow("sampling reachable workspace",
		"arm", arm.Name(), "min", minPoint, "max", maxPoint, "step", step, "points", len(xs)*len(ys)*len(zs))
	start := time.Now()

	var arms []referenceframe.Arm
	var groupResults [][]spatialmath.Pose
	err := utils.GroupWorkParallel(
		ctx,
		len(zs),
		s.parallelism,
		func(numGroups int) {
			arms = make([]referenceframe.Arm, numGroups)
			for i := range arms {
				arms[i] = arm.Clone()
			}
			groupResults = make([][]spatialmath.Pose, numGroups)
		},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc, error) {
			worker := arms[groupNum]
			var reached []spatialmath.Pose
			return func(ctx context.Context, memberNum, workNum int) error {
					z := zs[workNum]
					found := 0
					for _, y := range ys {
						for _, x := range xs {
							if ctx.Err() != nil {
								return nil
							}
							if err := worker.SetJointPositionsUnchecked(initial); err != nil {
								return err
							}
							target := spatialmath.NewPose(r3.Vector{X: x, Y: y, Z: z}, orientation)
							err := s.solver.Solve(ctx, worker, target, constraints)
							switch {
							case err == nil:
								reached = append(reached, target)
								found++
							case ik.IsNotConverged(err):
								s.logger.CDebugw(ctx, "point not reached", "point", target.Point(), "error", err)
							case ctx.Err() != nil:
								return nil
							default:
								return errors.Wrapf(err, "failed to sample point %v", target.Point())
							}
						}
					}
					s.logger.Debugw("sampled z slice", "group", groupNum, "z", z, "reached", found)
					return nil
				}, func() {
					groupResults[groupNum] = reached
				}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := lo.Flatten(groupResults)
	s.logger.Infow("sampled reachable workspace", "reached", len(results), "duration", time.Since(start))
	return results, nil
}
