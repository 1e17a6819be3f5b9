package ik

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/ikreach/logging"
	"go.viam.com/ikreach/referenceframe"
	"go.viam.com/ikreach/spatialmath"
)

const (
	defaultDistanceTolerance = 1e-3
	defaultAngleTolerance    = 5e-3
	defaultIterations        = 100
	defaultDamping           = 1e-3
	defaultJump              = 1e-6

	// largest joint space step taken in a single iteration, in radians
	maxStepNorm = 0.5
	maxDamping  = 1e3
)

// JacobianIK is a single-shot solver using damped least squares on a finite difference Jacobian
// of the pose error. It is deterministic: the same arm configuration and goal always yield the
// same result.
type JacobianIK struct {
	logger            logging.Logger
	maxIterations     int
	distanceTolerance float64
	angleTolerance    float64
	damping           float64
}

// CreateJacobianIKSolver creates a JacobianIK. If maxIterations is less than 1 the default of 100
// is used. A nil logger discards all logs.
func CreateJacobianIKSolver(logger logging.Logger, maxIterations int) *JacobianIK {
	if maxIterations < 1 {
		maxIterations = defaultIterations
	}
	if logger == nil {
		logger = logging.NewBlankLogger("")
	}
	return &JacobianIK{
		logger:            logger,
		maxIterations:     maxIterations,
		distanceTolerance: defaultDistanceTolerance,
		angleTolerance:    defaultAngleTolerance,
		damping:           defaultDamping,
	}
}

// Solve iterates from the arm's current configuration towards goal. The arm is only written to
// on success; on failure it keeps its starting configuration.
func (ik *JacobianIK) Solve(
	ctx context.Context,
	arm referenceframe.Arm,
	goal spatialmath.Pose,
	constraints *Constraints,
) error {
	limits := arm.DoF()
	mask := constraints.mask()
	distTol, angleTol := constraints.tolerances(ik.distanceTolerance, ik.angleTolerance)
	metric := NewSquaredNormMetric(goal, constraints)

	q := arm.JointPositions()
	clampInputs(q, limits)
	current, err := ik.state(arm, q)
	if err != nil {
		return err
	}
	delta := maskedDelta(current.Position, goal, mask)
	score := metric(current)

	lambda := ik.damping
	for iter := 0; iter < ik.maxIterations && !converged(delta, distTol, angleTol); iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		jac, err := ik.jacobian(arm, q, current.Position, mask)
		if err != nil {
			return err
		}
		dq, ok := dampedStep(jac, rowsOf(delta, mask), lambda)
		if !ok {
			lambda *= 10
			continue
		}
		candidate := make([]referenceframe.Input, len(q))
		floats.AddTo(candidate, q, dq)
		clampInputs(candidate, limits)

		next, err := ik.state(arm, candidate)
		if err != nil {
			return err
		}
		if nextScore := metric(next); nextScore < score {
			q, current, score = candidate, next, nextScore
			delta = maskedDelta(current.Position, goal, mask)
			lambda = max(lambda/10, ik.damping)
		} else {
			// reject the step and move towards gradient descent
			lambda *= 10
			if lambda > maxDamping {
				break
			}
		}
	}

	if converged(delta, distTol, angleTol) {
		return arm.SetJointPositions(q)
	}
	pos, rot := residuals(delta)
	ik.logger.Debugw("jacobian ik did not converge", "position_diff", pos, "rotation_diff", rot)
	return &NotConvergedError{Attempts: 1, PositionDiff: pos, RotationDiff: rot}
}

func (ik *JacobianIK) state(arm referenceframe.Arm, q []referenceframe.Input) (*State, error) {
	pose, err := arm.Transform(q)
	if err != nil {
		return nil, err
	}
	return &State{Position: pose, Configuration: q}, nil
}

// jacobian returns the enforced rows of the world frame pose Jacobian at q.
func (ik *JacobianIK) jacobian(
	arm referenceframe.Arm,
	q []referenceframe.Input,
	at spatialmath.Pose,
	mask [6]bool,
) (*mat.Dense, error) {
	nRows := 0
	for _, enforced := range mask {
		if enforced {
			nRows++
		}
	}
	jac := mat.NewDense(nRows, len(q), nil)
	probe := referenceframe.CopyInputs(q)
	for j := range q {
		probe[j] = q[j] + defaultJump
		moved, err := arm.Transform(probe)
		if err != nil {
			return nil, err
		}
		probe[j] = q[j]
		col := rowsOf(spatialmath.PoseDelta(at, moved), mask)
		floats.Scale(1/defaultJump, col)
		jac.SetCol(j, col)
	}
	return jac, nil
}

// dampedStep solves dq = Jᵀ(JJᵀ + λ²I)⁻¹e, limiting the step norm to maxStepNorm.
func dampedStep(jac *mat.Dense, e []float64, lambda float64) ([]float64, bool) {
	rows, cols := jac.Dims()
	if rows == 0 {
		return make([]float64, cols), true
	}
	var jjt mat.Dense
	jjt.Mul(jac, jac.T())
	for i := 0; i < rows; i++ {
		jjt.Set(i, i, jjt.At(i, i)+lambda*lambda)
	}
	var y mat.VecDense
	if err := y.SolveVec(&jjt, mat.NewVecDense(rows, e)); err != nil {
		return nil, false
	}
	dq := mat.NewVecDense(cols, nil)
	dq.MulVec(jac.T(), &y)
	step := dq.RawVector().Data
	if norm := floats.Norm(step, 2); norm > maxStepNorm {
		floats.Scale(maxStepNorm/norm, step)
	}
	return step, true
}

func converged(delta []float64, distTol, angleTol float64) bool {
	pos, rot := residuals(delta)
	return pos.Norm() <= distTol && rot.Norm() <= angleTol
}

func rowsOf(delta []float64, mask [6]bool) []float64 {
	out := make([]float64, 0, len(mask))
	for i, enforced := range mask {
		if enforced {
			out = append(out, delta[i])
		}
	}
	return out
}

func clampInputs(q []referenceframe.Input, limits []referenceframe.Limit) {
	for i := range q {
		if i < len(limits) {
			q[i] = limits[i].Clamp(q[i])
		}
	}
}
