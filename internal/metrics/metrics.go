// Package metrics accumulates per-timestep localization error against
// ground truth and reduces it to run-level summary statistics.
package metrics

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/pose.report/internal/geo"
	"github.com/banshee-data/pose.report/internal/mcl"
)

// StepError is the pose error at a single timestep. X and Y are absolute
// per-axis errors in metres; Yaw is the absolute wrapped heading error in
// radians.
type StepError struct {
	Step int
	X    float64
	Y    float64
	Yaw  float64
}

// Accumulator collects step errors over a run. Not safe for concurrent use.
type Accumulator struct {
	steps []StepError
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Record compares an estimate to the ground-truth pose for the same step and
// appends the error. Heading error is wrapped to [-pi, pi] before taking the
// absolute value, so an estimate of 2pi against a truth of 0 scores zero.
func (a *Accumulator) Record(step int, est, truth mcl.Pose) {
	a.steps = append(a.steps, StepError{
		Step: step,
		X:    math.Abs(est.X - truth.X),
		Y:    math.Abs(est.Y - truth.Y),
		Yaw:  math.Abs(geo.AngleDiff(est.Theta, truth.Theta)),
	})
}

// Steps returns a copy of the recorded step errors in order.
func (a *Accumulator) Steps() []StepError {
	out := make([]StepError, len(a.steps))
	copy(out, a.steps)
	return out
}

// Len returns the number of recorded steps.
func (a *Accumulator) Len() int { return len(a.steps) }

// AxisSummary is the reduction of one error axis over a run.
type AxisSummary struct {
	Mean float64
	RMSE float64
	Max  float64
}

// Summary is the run-level reduction of all three error axes.
type Summary struct {
	Steps int
	X     AxisSummary
	Y     AxisSummary
	Yaw   AxisSummary
}

// Summarize reduces the accumulated errors. A run with no recorded steps
// summarizes to the zero value.
func (a *Accumulator) Summarize() Summary {
	n := len(a.steps)
	if n == 0 {
		return Summary{}
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	yaws := make([]float64, n)
	for i, s := range a.steps {
		xs[i] = s.X
		ys[i] = s.Y
		yaws[i] = s.Yaw
	}
	return Summary{
		Steps: n,
		X:     summarizeAxis(xs),
		Y:     summarizeAxis(ys),
		Yaw:   summarizeAxis(yaws),
	}
}

func summarizeAxis(vals []float64) AxisSummary {
	sq := make([]float64, len(vals))
	max := 0.0
	for i, v := range vals {
		sq[i] = v * v
		if v > max {
			max = v
		}
	}
	return AxisSummary{
		Mean: stat.Mean(vals, nil),
		RMSE: math.Sqrt(stat.Mean(sq, nil)),
		Max:  max,
	}
}

// WriteCSV writes the per-step errors as CSV with a header row, suitable for
// plotting or diffing across runs.
func (a *Accumulator) WriteCSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "step,err_x_m,err_y_m,err_yaw_rad"); err != nil {
		return err
	}
	for _, s := range a.steps {
		if _, err := fmt.Fprintf(w, "%d,%g,%g,%g\n", s.Step, s.X, s.Y, s.Yaw); err != nil {
			return err
		}
	}
	return nil
}

// String renders the summary in a compact single-line form for log output.
func (s Summary) String() string {
	return fmt.Sprintf("steps=%d x(mean=%.3fm rmse=%.3fm max=%.3fm) y(mean=%.3fm rmse=%.3fm max=%.3fm) yaw(mean=%.4f rmse=%.4f max=%.4f)",
		s.Steps,
		s.X.Mean, s.X.RMSE, s.X.Max,
		s.Y.Mean, s.Y.RMSE, s.Y.Max,
		s.Yaw.Mean, s.Yaw.RMSE, s.Yaw.Max)
}
