package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Noofbiz/openego/datasets"
	"github.com/Noofbiz/openego/ndarray"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// wristJoint is the MANO index of the wrist.
const wristJoint = 0

var plotCmd = &cobra.Command{
	Use:     "plot <index> <action>",
	Short:   "Plot the wrist pixel trajectories of one action.",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, args []string) error {
		demo, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid demonstration index %q: %w", args[0], err)
		}
		action, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid action index %q: %w", args[1], err)
		}
		outDir, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		p, err := newProvider(cfg, datasets.Joint, datasets.Annotation)
		if err != nil {
			return err
		}
		actions, err := loadActions(p, demo)
		if err != nil {
			return err
		}
		if action < 0 || action >= len(actions) {
			return fmt.Errorf("action %d not in [0, %d) for demo %d", action, len(actions), demo)
		}
		a := actions[action]
		seg, err := a.JointsPixel()
		if err != nil {
			return err
		}
		title := fmt.Sprintf("demo %d action %d: %s", demo, action, a.Label)
		name := fmt.Sprintf("demo_%d_action_%d_wrist.png", demo, action)
		out, err := plotWrists(outDir, name, title, wristTrajectory(seg.LeftHand), wristTrajectory(seg.RightHand))
		if err != nil {
			return err
		}
		logInfo(os.Stdout, "wrote %s", out)
		return nil
	},
}

// wristTrajectory extracts the wrist pixel position of every frame of an
// (n, 21, 2) pixel array.
func wristTrajectory(px *ndarray.Array[int32]) plotter.XYs {
	xys := make(plotter.XYs, 0, px.Len())
	for f := 0; f < px.Len(); f++ {
		xys = append(xys, plotter.XY{
			X: float64(px.At(f, wristJoint, 0)),
			Y: float64(px.At(f, wristJoint, 1)),
		})
	}
	return xys
}

// plotWrists writes a PNG with the left wrist (blue) and right wrist (red)
// trajectories and returns its path.
func plotWrists(outDir, name, title string, left, right plotter.XYs) (string, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"

	for _, h := range []struct {
		label string
		xys   plotter.XYs
		col   color.RGBA
	}{
		{"left wrist", left, color.RGBA{R: 20, G: 80, B: 200, A: 220}},
		{"right wrist", right, color.RGBA{R: 200, G: 30, B: 30, A: 220}},
	} {
		if len(h.xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(h.xys)
		if err != nil {
			return "", err
		}
		line.Color = h.col
		line.Width = vg.Points(0.8)
		p.Add(line)

		pts, err := plotter.NewScatter(h.xys)
		if err != nil {
			return "", err
		}
		pts.GlyphStyle.Color = h.col
		pts.GlyphStyle.Radius = vg.Points(1.8)
		p.Add(pts)
		p.Legend.Add(h.label, line, pts)
	}

	p.Add(plotter.NewGrid())
	all := append(append(plotter.XYs{}, left...), right...)
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = autoRange(all)

	if err := ensureDir(outDir); err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, name)
	if err := p.Save(8*vg.Inch, 6*vg.Inch, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// autoRange computes padded min/max for X and Y for a set of points.
func autoRange(xs plotter.XYs) (xmin, xmax, ymin, ymax float64) {
	if len(xs) == 0 {
		return -1, 1, -1, 1
	}
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, p := range xs {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}
	padx := (xmax - xmin) * 0.06
	pady := (ymax - ymin) * 0.06
	if padx == 0 {
		padx = 1.0
	}
	if pady == 0 {
		pady = 1.0
	}
	return xmin - padx, xmax + padx, ymin - pady, ymax + pady
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
