package workspace

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/ikreach/spatialmath"
)

const plotSize = 6 * vg.Inch

// SavePlot writes top (x, y) and side (x, z) scatter views of the reached positions to path. The
// image format follows the file extension, e.g. .png or .svg.
func SavePlot(poses []spatialmath.Pose, title, path string) error {
	if len(poses) == 0 {
		return errors.New("no reached points to plot")
	}
	top := make(plotter.XYs, len(poses))
	side := make(plotter.XYs, len(poses))
	for i, p := range poses {
		pt := p.Point()
		top[i] = plotter.XY{X: pt.X, Y: pt.Y}
		side[i] = plotter.XY{X: pt.X, Y: pt.Z}
	}

	p := plot.New()
	p.Title.Text = title + " reachable workspace"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y / z (m)"
	p.Add(plotter.NewGrid())

	topScatter, err := plotter.NewScatter(top)
	if err != nil {
		return err
	}
	sideScatter, err := plotter.NewScatter(side)
	if err != nil {
		return err
	}
	sideScatter.GlyphStyle.Shape = draw.CrossGlyph{}
	p.Add(topScatter, sideScatter)
	p.Legend.Add("top (x, y)", topScatter)
	p.Legend.Add("side (x, z)", sideScatter)

	return errors.Wrapf(p.Save(plotSize, plotSize, path), "failed to save plot %q", path)
}
