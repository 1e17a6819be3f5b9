// Package cli contains the ikreach command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Global flags.
	generalFlagDebug      = "debug"
	generalFlagLogLevel   = "log-level"
	generalFlagModel      = "model"
	generalFlagSeed       = "seed"
	generalFlagRestarts   = "restarts"
	generalFlagIterations = "iterations"

	// Flags shared by solve and reachable.
	ikFlagOrientation  = "orientation"
	ikFlagStart        = "start"
	ikFlagPositionOnly = "position-only"

	solveFlagPoint = "point"

	reachableFlagMin      = "min"
	reachableFlagMax      = "max"
	reachableFlagStep     = "step"
	reachableFlagParallel = "parallel"
	reachableFlagJSON     = "json"
	reachableFlagPlot     = "plot"

	defaultRestarts = 10
)

var ikFlags = []cli.Flag{
	&cli.Float64SliceFlag{
		Name:  ikFlagOrientation,
		Usage: "goal orientation as roll,pitch,yaw in degrees",
	},
	&cli.Float64SliceFlag{
		Name:  ikFlagStart,
		Usage: "starting joint positions in degrees, one per joint",
	},
	&cli.BoolFlag{
		Name:  ikFlagPositionOnly,
		Usage: "only match the goal position, ignoring orientation",
	},
}

var app = &cli.App{
	Name:            "ikreach",
	Usage:           "solve inverse kinematics and map the reachable workspace of an arm",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringSliceFlag{
			Name:  generalFlagLogLevel,
			Usage: "set the level of loggers matching a pattern, e.g. ikreach.workspace=debug",
		},
		&cli.StringFlag{
			Name:  generalFlagModel,
			Usage: "load the arm kinematics from JSON `FILE` instead of the bundled six axis arm",
		},
		&cli.Int64Flag{
			Name:  generalFlagSeed,
			Usage: "seed for random restarts",
		},
		&cli.IntFlag{
			Name:  generalFlagRestarts,
			Value: defaultRestarts,
			Usage: "number of solve attempts per goal, including the first",
		},
		&cli.IntFlag{
			Name:  generalFlagIterations,
			Usage: "iterations per solve attempt (0 means the solver default)",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "solve",
			Usage:     "solve for the joint positions reaching a pose",
			UsageText: "ikreach solve --point x,y,z [--orientation r,p,y] [--start j1,j2,...]",
			Flags: append([]cli.Flag{
				&cli.Float64SliceFlag{
					Name:     solveFlagPoint,
					Required: true,
					Usage:    "goal position as x,y,z in meters",
				},
			}, ikFlags...),
			Action: SolveAction,
		},
		{
			Name:  "reachable",
			Usage: "sample a box and report which points the arm can reach",
			UsageText: "ikreach reachable --min x,y,z --max x,y,z --step s " +
				"[--parallel n] [--orientation r,p,y] [--start j1,j2,...] [--json] [--plot FILE]",
			Flags: append([]cli.Flag{
				&cli.Float64SliceFlag{
					Name:     reachableFlagMin,
					Required: true,
					Usage:    "lower corner of the box as x,y,z in meters (inclusive)",
				},
				&cli.Float64SliceFlag{
					Name:     reachableFlagMax,
					Required: true,
					Usage:    "upper corner of the box as x,y,z in meters (exclusive)",
				},
				&cli.Float64Flag{
					Name:     reachableFlagStep,
					Required: true,
					Usage:    "grid spacing in meters",
				},
				&cli.IntFlag{
					Name:  reachableFlagParallel,
					Usage: "number of parallel workers (0 means one per available core)",
				},
				&cli.BoolFlag{
					Name:  reachableFlagJSON,
					Usage: "print every reached point as a JSON object instead of a summary",
				},
				&cli.StringFlag{
					Name:  reachableFlagPlot,
					Usage: "also save top and side scatter views of the reached points to `FILE` (.png, .svg, ...)",
				},
			}, ikFlags...),
			Action: ReachableAction,
		},
		{
			Name:   "joints",
			Usage:  "print the joints and limits of the arm model",
			Action: JointsAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
