// Package plotting renders post-run trajectory and error plots as PNGs.
package plotting

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/metrics"
)

// TrajectoryPlotter accumulates per-step poses during a run and renders them
// after the run finishes.
type TrajectoryPlotter struct {
	mu        sync.Mutex
	outputDir string
	landmarks []mcl.Landmark
	estimates []mcl.Pose
	truth     []mcl.Pose
}

// NewTrajectoryPlotter creates a plotter writing into outputDir.
func NewTrajectoryPlotter(outputDir string, landmarks []mcl.Landmark) (*TrajectoryPlotter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &TrajectoryPlotter{outputDir: outputDir, landmarks: landmarks}, nil
}

// Sample records one timestep. truth may be the zero pose when no ground
// truth is available; pass hasTruth=false to leave it off the plot.
func (tp *TrajectoryPlotter) Sample(est mcl.Pose, truth mcl.Pose, hasTruth bool) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.estimates = append(tp.estimates, est)
	if hasTruth {
		tp.truth = append(tp.truth, truth)
	}
}

// GeneratePlots writes trajectory.png and, when step errors are provided,
// error.png. It returns the paths written.
func (tp *TrajectoryPlotter) GeneratePlots(steps []metrics.StepError) ([]string, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	var written []string

	p := plot.New()
	p.Title.Text = "Estimated vs Ground-Truth Trajectory"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	if len(tp.landmarks) > 0 {
		pts := make(plotter.XYs, len(tp.landmarks))
		for i, lm := range tp.landmarks {
			pts[i] = plotter.XY{X: lm.X, Y: lm.Y}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("landmark scatter: %w", err)
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add("landmarks", scatter)
	}

	estLine, err := plotter.NewLine(posesToXYs(tp.estimates))
	if err != nil {
		return nil, fmt.Errorf("estimate line: %w", err)
	}
	estLine.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	estLine.Width = vg.Points(1)
	p.Add(estLine)
	p.Legend.Add("estimate", estLine)

	if len(tp.truth) > 0 {
		gtLine, err := plotter.NewLine(posesToXYs(tp.truth))
		if err != nil {
			return nil, fmt.Errorf("ground-truth line: %w", err)
		}
		gtLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		gtLine.Width = vg.Points(1)
		p.Add(gtLine)
		p.Legend.Add("ground truth", gtLine)
	}
	p.Legend.Top = true

	trajFile := filepath.Join(tp.outputDir, "trajectory.png")
	if err := p.Save(8*vg.Inch, 8*vg.Inch, trajFile); err != nil {
		return nil, fmt.Errorf("save trajectory plot: %w", err)
	}
	written = append(written, trajFile)

	if len(steps) > 0 {
		errFile, err := tp.generateErrorPlot(steps)
		if err != nil {
			return nil, err
		}
		written = append(written, errFile)
	}

	return written, nil
}

func (tp *TrajectoryPlotter) generateErrorPlot(steps []metrics.StepError) (string, error) {
	p := plot.New()
	p.Title.Text = "Per-Step Localization Error"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Error (m / rad)"

	xPts := make(plotter.XYs, len(steps))
	yPts := make(plotter.XYs, len(steps))
	yawPts := make(plotter.XYs, len(steps))
	for i, s := range steps {
		xPts[i] = plotter.XY{X: float64(s.Step), Y: s.X}
		yPts[i] = plotter.XY{X: float64(s.Step), Y: s.Y}
		yawPts[i] = plotter.XY{X: float64(s.Step), Y: s.Yaw}
	}

	for _, series := range []struct {
		name string
		pts  plotter.XYs
		col  color.RGBA
	}{
		{"x error", xPts, color.RGBA{R: 214, G: 39, B: 40, A: 255}},
		{"y error", yPts, color.RGBA{R: 31, G: 119, B: 180, A: 255}},
		{"yaw error", yawPts, color.RGBA{R: 44, G: 160, B: 44, A: 255}},
	} {
		line, err := plotter.NewLine(series.pts)
		if err != nil {
			return "", fmt.Errorf("%s line: %w", series.name, err)
		}
		line.Color = series.col
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}
	p.Legend.Top = true

	errFile := filepath.Join(tp.outputDir, "error.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, errFile); err != nil {
		return "", fmt.Errorf("save error plot: %w", err)
	}
	return errFile, nil
}

func posesToXYs(poses []mcl.Pose) plotter.XYs {
	pts := make(plotter.XYs, len(poses))
	for i, p := range poses {
		pts[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return pts
}
