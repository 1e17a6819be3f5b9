package ik

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/ikreach/logging"
	"go.viam.com/ikreach/referenceframe"
	"go.viam.com/ikreach/spatialmath"
)

// RandomRestartIK wraps another Solver. Whenever the wrapped solver fails to converge, the arm is
// moved to a random configuration and the solve is tried again, up to numMaxTry attempts in total.
// RandomRestartIK is itself a Solver.
type RandomRestartIK struct {
	solver    Solver
	numMaxTry int
	seed      int64
	logger    logging.Logger
}

// CreateRandomRestartIKSolver creates a RandomRestartIK that gives solver at most numMaxTry
// attempts per Solve. seed determines the random restart configurations. solver and logger must
// not be nil.
func CreateRandomRestartIKSolver(solver Solver, numMaxTry int, seed int64, logger logging.Logger) (*RandomRestartIK, error) {
	if solver == nil {
		return nil, errors.New("random restart ik needs a solver to wrap")
	}
	if logger == nil {
		return nil, errors.New("random restart ik needs a logger")
	}
	if numMaxTry < 1 {
		return nil, errors.Errorf("random restart ik needs at least one try, got %d", numMaxTry)
	}
	return &RandomRestartIK{solver: solver, numMaxTry: numMaxTry, seed: seed, logger: logger}, nil
}

// Solve runs the wrapped solver from the arm's current configuration, then from random
// configurations until it converges or the tries run out. Random configurations have their
// continuous joints moved to the turn nearest the starting configuration. If no try converges,
// the arm is returned to its starting configuration and the last *NotConvergedError is returned.
// Any other error from the wrapped solver stops the loop immediately.
func (ik *RandomRestartIK) Solve(
	ctx context.Context,
	arm referenceframe.Arm,
	goal spatialmath.Pose,
	constraints *Constraints,
) error {
	ik.logger.Debugw("random restart ik", "arm", arm.Name(), "goal", goal)
	initial := arm.JointPositions()
	limits := arm.DoF()

	var randSource *rand.Rand
	var result error
	for try := 0; try < ik.numMaxTry; try++ {
		if err := ctx.Err(); err != nil {
			return ik.restore(arm, initial, err)
		}
		ik.logger.Debugw("solving ik", "try", try+1, "of", ik.numMaxTry, "joints", arm.JointPositions())

		result = ik.solver.Solve(ctx, arm, goal, constraints)
		if result == nil {
			ik.logger.Debugw("solved ik", "try", try+1, "joints", arm.JointPositions())
			return nil
		}
		if !IsNotConverged(result) {
			return ik.restore(arm, initial, errors.Wrapf(result, "ik try %d", try+1))
		}
		ik.logger.Debugw("ik did not converge", "try", try+1, "error", result)
		if try+1 == ik.numMaxTry {
			break
		}

		if randSource == nil {
			randSource = ik.randSourceFor(goal)
		}
		next := RandomJointPositions[referenceframe.Input](limits, randSource)
		if err := NearestAngles(initial, next, limits); err != nil {
			return ik.restore(arm, initial, err)
		}
		if err := arm.SetJointPositionsUnchecked(next); err != nil {
			return ik.restore(arm, initial, err)
		}
	}

	ik.logger.Debugw("failed to solve ik, restoring initial joints", "tries", ik.numMaxTry, "joints", initial)
	return ik.restore(arm, initial, result)
}

func (ik *RandomRestartIK) restore(arm referenceframe.Arm, initial []referenceframe.Input, cause error) error {
	if err := arm.SetJointPositionsUnchecked(initial); err != nil {
		return multierr.Combine(cause, errors.Wrap(err, "failed to restore initial joints"))
	}
	return cause
}

// randSourceFor derives the restart sequence from the seed and the goal, so that equal requests
// restart through equal configurations no matter which goroutine makes them.
func (ik *RandomRestartIK) randSourceFor(goal spatialmath.Pose) *rand.Rand {
	h := fnv.New64a()
	var buf [8]byte
	write := func(bits uint64) {
		binary.LittleEndian.PutUint64(buf[:], bits)
		//nolint:errcheck
		h.Write(buf[:])
	}
	write(uint64(ik.seed))
	pt := goal.Point()
	q := goal.Orientation().Quaternion()
	for _, f := range []float64{pt.X, pt.Y, pt.Z, q.Real, q.Imag, q.Jmag, q.Kmag} {
		write(math.Float64bits(f))
	}
	//nolint:gosec
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
