package cli

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/ikreach/logging"
	"go.viam.com/ikreach/motionplan/ik"
	"go.viam.com/ikreach/motionplan/workspace"
	"go.viam.com/ikreach/referenceframe"
	"go.viam.com/ikreach/spatialmath"
	"go.viam.com/ikreach/utils"
)

// ikClient holds everything a command needs to run the solvers on one arm.
type ikClient struct {
	ctx         context.Context
	logger      logging.Logger
	arm         *referenceframe.SerialChain
	solver      *ik.RandomRestartIK
	constraints *ik.Constraints
}

func newIKClient(c *cli.Context) (*ikClient, error) {
	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	arm, err := loadArm(c)
	if err != nil {
		return nil, err
	}
	if start := c.Float64Slice(ikFlagStart); len(start) > 0 {
		if err := arm.SetJointPositions(utils.DegsToRads(start)); err != nil {
			return nil, errors.Wrap(err, "invalid start joint positions")
		}
	}

	ikLogger := logger.Sublogger("ik")
	engine := ik.CreateJacobianIKSolver(ikLogger.Sublogger("jacobian"), c.Int(generalFlagIterations))
	solver, err := ik.CreateRandomRestartIKSolver(engine, c.Int(generalFlagRestarts), c.Int64(generalFlagSeed), ikLogger)
	if err != nil {
		return nil, err
	}

	constraints := ik.NewDefaultConstraints()
	if c.Bool(ikFlagPositionOnly) {
		constraints = ik.NewPositionOnlyConstraints()
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Bool(generalFlagDebug) {
		ctx = logging.EnableDebugMode(ctx, "")
	}
	return &ikClient{ctx: ctx, logger: logger, arm: arm, solver: solver, constraints: constraints}, nil
}

func newLogger(c *cli.Context) (logging.Logger, error) {
	logger := logging.NewBlankLogger("ikreach")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(logging.INFO)
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	}

	var patterns []logging.LoggerPatternConfig
	for _, s := range c.StringSlice(generalFlagLogLevel) {
		cfg, err := logging.ParseLoggerPatternConfig(s)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, cfg)
	}
	if err := logging.UpdateLoggerConfig(patterns, logger); err != nil {
		return nil, err
	}
	return logger, nil
}

func loadArm(c *cli.Context) (*referenceframe.SerialChain, error) {
	if path := c.String(generalFlagModel); path != "" {
		return referenceframe.ParseModelJSONFile(path, "")
	}
	return referenceframe.NewSixAxisChain()
}

// goalOrientation returns the orientation flag if set, otherwise the arm's current end orientation.
func (client *ikClient) goalOrientation(c *cli.Context) (spatialmath.Orientation, error) {
	o, err := orientationFlag(c, ikFlagOrientation)
	if err != nil || o != nil {
		return o, err
	}
	current, err := client.arm.EndPose()
	if err != nil {
		return nil, err
	}
	return current.Orientation(), nil
}

// SolveAction is the corresponding Action for 'solve'.
func SolveAction(c *cli.Context) error {
	client, err := newIKClient(c)
	if err != nil {
		return err
	}
	point, err := vectorFlag(c, solveFlagPoint)
	if err != nil {
		return err
	}
	orientation, err := client.goalOrientation(c)
	if err != nil {
		return err
	}
	goal := spatialmath.NewPose(point, orientation)

	err = client.solver.Solve(client.ctx, client.arm, goal, client.constraints)
	var notConverged *ik.NotConvergedError
	if errors.As(err, &notConverged) {
		printf(c.App.Writer, "could not reach %v: position diff %v, rotation diff %v",
			goal, notConverged.PositionDiff, notConverged.RotationDiff)
		return err
	}
	if err != nil {
		return err
	}

	reached, err := client.arm.EndPose()
	if err != nil {
		return err
	}
	printf(c.App.Writer, "joints (degrees): %s", formatJoints(utils.RadsToDegs(client.arm.JointPositions())))
	printf(c.App.Writer, "end pose: %v", reached)
	return nil
}

type reachedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ReachableAction is the corresponding Action for 'reachable'.
func ReachableAction(c *cli.Context) error {
	client, err := newIKClient(c)
	if err != nil {
		return err
	}
	minPoint, err := vectorFlag(c, reachableFlagMin)
	if err != nil {
		return err
	}
	maxPoint, err := vectorFlag(c, reachableFlagMax)
	if err != nil {
		return err
	}
	orientation, err := client.goalOrientation(c)
	if err != nil {
		return err
	}
	reference := spatialmath.NewPose(minPoint, orientation)

	sampler := workspace.NewSampler(client.solver, c.Int(reachableFlagParallel), client.logger.Sublogger("workspace"))
	poses, err := sampler.SampleReachable(
		client.ctx, client.arm, reference, client.constraints, minPoint, maxPoint, c.Float64(reachableFlagStep))
	if err != nil {
		return err
	}

	if path := c.String(reachableFlagPlot); path != "" {
		if err := workspace.SavePlot(poses, client.arm.Name(), path); err != nil {
			return err
		}
	}

	if c.Bool(reachableFlagJSON) {
		enc := json.NewEncoder(c.App.Writer)
		for _, p := range poses {
			pt := p.Point()
			if err := enc.Encode(reachedPoint{X: pt.X, Y: pt.Y, Z: pt.Z}); err != nil {
				return err
			}
		}
		return nil
	}

	summary, err := workspace.Summarize(poses)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "reached %d points", summary.Count)
	if summary.Count > 0 {
		printf(c.App.Writer, "min:    %s", formatVector(summary.Min))
		printf(c.App.Writer, "max:    %s", formatVector(summary.Max))
		printf(c.App.Writer, "mean:   %s", formatVector(summary.Mean))
		printf(c.App.Writer, "stddev: %s", formatVector(summary.StdDev))
	}
	return nil
}

// JointsAction is the corresponding Action for 'joints'.
func JointsAction(c *cli.Context) error {
	arm, err := loadArm(c)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", arm)
	return nil
}
