package workspace

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/test"

	"go.viam.com/ikreach/logging"
	"go.viam.com/ikreach/motionplan/ik"
	"go.viam.com/ikreach/referenceframe"
	"go.viam.com/ikreach/spatialmath"
)

var (
	boxMin       = r3.Vector{X: 0, Y: -0.9, Z: 0}
	boxMax       = r3.Vector{X: 0.8, Y: 0.9, Z: 0.9}
	initialJoint = []referenceframe.Input{0.2, 0.2, 0, -1, 0, 0}
)

// regionSolver converges exactly on targets inside a fixed region. It fails structurally at or above
// failAboveZ when that is set, and counts how often the arm was not reset before a call.
type regionSolver struct {
	initial     []referenceframe.Input
	failAboveZ  float64
	calls       atomic.Int32
	dirtyStarts atomic.Int32
}

func (f *regionSolver) Solve(
	ctx context.Context,
	arm referenceframe.Arm,
	goal spatialmath.Pose,
	constraints *ik.Constraints,
) error {
	f.calls.Inc()
	positions := arm.JointPositions()
	for i := range positions {
		if positions[i] != f.initial[i] {
			f.dirtyStarts.Inc()
			break
		}
	}
	pt := goal.Point()
	if f.failAboveZ > 0 && pt.Z >= f.failAboveZ {
		return referenceframe.NewIncorrectDoFError(0, len(positions))
	}
	if pt.X < 0.25 && pt.Y >= -0.05 && pt.Y < 0.25 && pt.Z < 0.35 {
		return arm.SetJointPositions([]referenceframe.Input{pt.X, pt.Y, pt.Z, 0, 0, 0})
	}
	if err := arm.SetJointPositionsUnchecked([]referenceframe.Input{9, 9, 9, 9, 9, 9}); err != nil {
		return err
	}
	return &ik.NotConvergedError{Attempts: 1, PositionDiff: pt}
}

func newSampleArm(t *testing.T) (referenceframe.Arm, spatialmath.Pose) {
	t.Helper()
	arm, err := referenceframe.NewSixAxisChain()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arm.SetJointPositions(initialJoint), test.ShouldBeNil)
	pose, err := arm.EndPose()
	test.That(t, err, test.ShouldBeNil)
	return arm, pose
}

func TestSampleReachable(t *testing.T) {
	arm, reference := newSampleArm(t)
	solver := &regionSolver{initial: initialJoint}
	sampler := NewSampler(solver, 4, logging.NewTestLogger(t))

	poses, err := sampler.SampleReachable(context.Background(), arm, reference, nil, boxMin, boxMax, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solver.calls.Load(), test.ShouldEqual, int32(8*18*9))
	test.That(t, solver.dirtyStarts.Load(), test.ShouldEqual, int32(0))
	test.That(t, len(poses), test.ShouldEqual, 36)

	for _, p := range poses {
		pt := p.Point()
		test.That(t, pt.X, test.ShouldBeGreaterThanOrEqualTo, boxMin.X)
		test.That(t, pt.X, test.ShouldBeLessThan, boxMax.X)
		test.That(t, pt.Y, test.ShouldBeGreaterThanOrEqualTo, boxMin.Y)
		test.That(t, pt.Y, test.ShouldBeLessThan, boxMax.Y)
		test.That(t, pt.Z, test.ShouldBeGreaterThanOrEqualTo, boxMin.Z)
		test.That(t, pt.Z, test.ShouldBeLessThan, boxMax.Z)
		test.That(t, spatialmath.OrientationAlmostEqual(p.Orientation(), reference.Orientation()), test.ShouldBeTrue)
	}

	// ordered by z, then y, then x
	test.That(t, poses[0].Point(), test.ShouldResemble, r3.Vector{X: 0, Y: -0.9 + 9*0.1, Z: 0})
	test.That(t, poses[1].Point().X, test.ShouldAlmostEqual, 0.1)
	test.That(t, poses[35].Point().Z, test.ShouldAlmostEqual, 0.3)

	// the caller's arm is untouched
	test.That(t, arm.JointPositions(), test.ShouldResemble, initialJoint)
}

func TestSampleReachableWithoutLogger(t *testing.T) {
	arm, reference := newSampleArm(t)
	solver := &regionSolver{initial: initialJoint}
	poses, err := NewSampler(solver, 2, nil).
		SampleReachable(context.Background(), arm, reference, nil, boxMin, boxMax, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(poses), test.ShouldEqual, 36)
}

func TestSampleReachableParallelismInvariant(t *testing.T) {
	arm, reference := newSampleArm(t)
	var expected []spatialmath.Pose
	for _, parallelism := range []int{1, 2, 3, 9, 32, 0} {
		solver := &regionSolver{initial: initialJoint}
		poses, err := NewSampler(solver, parallelism, logging.NewTestLogger(t)).
			SampleReachable(context.Background(), arm, reference, nil, boxMin, boxMax, 0.1)
		test.That(t, err, test.ShouldBeNil)
		if expected == nil {
			expected = poses
			continue
		}
		test.That(t, poses, test.ShouldResemble, expected)
	}
}

func TestSampleReachableStructuralError(t *testing.T) {
	arm, reference := newSampleArm(t)
	solver := &regionSolver{initial: initialJoint, failAboveZ: 0.45}
	poses, err := NewSampler(solver, 1, logging.NewTestLogger(t)).
		SampleReachable(context.Background(), arm, reference, nil, boxMin, boxMax, 0.1)
	test.That(t, poses, test.ShouldBeNil)
	test.That(t, errors.Is(err, referenceframe.ErrIncorrectDoF), test.ShouldBeTrue)
	test.That(t, ik.IsNotConverged(err), test.ShouldBeFalse)
	// five full z slices, then the first point of the sixth
	test.That(t, solver.calls.Load(), test.ShouldEqual, int32(5*8*18+1))

	solver = &regionSolver{initial: initialJoint, failAboveZ: 0.45}
	_, err = NewSampler(solver, 4, logging.NewTestLogger(t)).
		SampleReachable(context.Background(), arm, reference, nil, boxMin, boxMax, 0.1)
	test.That(t, errors.Is(err, referenceframe.ErrIncorrectDoF), test.ShouldBeTrue)
	test.That(t, arm.JointPositions(), test.ShouldResemble, initialJoint)
}

func TestSampleReachableCancelled(t *testing.T) {
	arm, reference := newSampleArm(t)
	solver := &regionSolver{initial: initialJoint}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSampler(solver, 4, logging.NewTestLogger(t)).
		SampleReachable(ctx, arm, reference, nil, boxMin, boxMax, 0.1)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	test.That(t, solver.calls.Load(), test.ShouldEqual, int32(0))
}

func TestSampleReachableBadBox(t *testing.T) {
	arm, reference := newSampleArm(t)
	sampler := NewSampler(&regionSolver{initial: initialJoint}, 4, logging.NewTestLogger(t))
	ctx := context.Background()

	for _, step := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err := sampler.SampleReachable(ctx, arm, reference, nil, boxMin, boxMax, step)
		test.That(t, err, test.ShouldNotBeNil)
	}
	_, err := sampler.SampleReachable(ctx, arm, reference, nil, boxMax, boxMin, 0.1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "greater than max")

	// grids too large to enumerate are rejected before any solve
	solver := &regionSolver{initial: initialJoint}
	tooFine := NewSampler(solver, 4, logging.NewTestLogger(t))
	cube := r3.Vector{X: 0.8, Y: 0.8, Z: 0.8}
	for _, step := range []float64{1e-300, 1e-12, 1e-4} {
		poses, err := tooFine.SampleReachable(ctx, arm, reference, nil, r3.Vector{}, cube, step)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "more than")
		test.That(t, poses, test.ShouldBeNil)
	}
	_, err = tooFine.SampleReachable(ctx, arm, reference, nil,
		r3.Vector{X: -math.MaxFloat64}, r3.Vector{X: math.MaxFloat64}, 1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, solver.calls.Load(), test.ShouldEqual, int32(0))

	// an empty box is valid and reaches nothing
	poses, err := sampler.SampleReachable(ctx, arm, reference, nil, boxMin, boxMin, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses, test.ShouldBeEmpty)
}

func TestGridPoints(t *testing.T) {
	test.That(t, len(gridPoints(0, 0.8, 0.1)), test.ShouldEqual, 8)
	test.That(t, len(gridPoints(-0.9, 0.9, 0.1)), test.ShouldEqual, 18)
	test.That(t, len(gridPoints(0, 0.9, 0.1)), test.ShouldEqual, 9)
	test.That(t, gridPoints(0, 1, 0.3), test.ShouldResemble, []float64{0, 0.3, 0.6, 0.8999999999999999})
	test.That(t, gridPoints(1, 1, 0.1), test.ShouldBeNil)

	// the last point always stays below max
	for _, step := range []float64{0.1, 0.01, 0.05, 0.3, 0.7} {
		points := gridPoints(-1.3, 2.1, step)
		test.That(t, points[len(points)-1], test.ShouldBeLessThan, 2.1)
		test.That(t, points[len(points)-1]+step, test.ShouldBeGreaterThanOrEqualTo, 2.1-1e-9)
	}
}

func TestSampleReachableWithRestartIK(t *testing.T) {
	logger := logging.NewTestLogger(t)
	arm, err := referenceframe.NewSixAxisChain()
	test.That(t, err, test.ShouldBeNil)
	restart, err := ik.CreateRandomRestartIKSolver(ik.CreateJacobianIKSolver(logger, 0), 20, 1, logger)
	test.That(t, err, test.ShouldBeNil)

	lo := r3.Vector{X: 0.2, Y: 0.2, Z: 0.4}
	hi := r3.Vector{X: 0.4, Y: 0.4, Z: 0.6}
	reference := spatialmath.NewZeroPose()
	constraints := ik.NewPositionOnlyConstraints()

	serial, err := NewSampler(restart, 1, logger).SampleReachable(context.Background(), arm, reference, constraints, lo, hi, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(serial), test.ShouldEqual, 8)

	parallel, err := NewSampler(restart, 2, logger).SampleReachable(context.Background(), arm, reference, constraints, lo, hi, 0.1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parallel, test.ShouldResemble, serial)
	test.That(t, arm.JointPositions(), test.ShouldResemble, []referenceframe.Input{0, 0, 0, 0, 0, 0})
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary, test.ShouldResemble, Summary{})

	summary, err = Summarize([]spatialmath.Pose{
		spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3}),
		spatialmath.NewPoseFromPoint(r3.Vector{X: 3, Y: 2, Z: -3}),
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Count, test.ShouldEqual, 2)
	test.That(t, summary.Min, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: -3})
	test.That(t, summary.Max, test.ShouldResemble, r3.Vector{X: 3, Y: 2, Z: 3})
	test.That(t, summary.Mean, test.ShouldResemble, r3.Vector{X: 2, Y: 2, Z: 0})
	test.That(t, summary.StdDev, test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 3})
}

func TestSavePlot(t *testing.T) {
	dir := t.TempDir()
	poses := []spatialmath.Pose{
		spatialmath.NewPoseFromPoint(r3.Vector{X: 0.1, Y: 0.2, Z: 0.3}),
		spatialmath.NewPoseFromPoint(r3.Vector{X: 0.2, Y: 0.2, Z: 0.3}),
		spatialmath.NewPoseFromPoint(r3.Vector{X: 0.2, Y: 0.3, Z: 0.4}),
	}
	path := filepath.Join(dir, "reachable.png")
	test.That(t, SavePlot(poses, "sixaxis", path), test.ShouldBeNil)
	info, err := os.Stat(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)

	err = SavePlot(nil, "sixaxis", filepath.Join(dir, "empty.png"))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = os.Stat(filepath.Join(dir, "empty.png"))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}
