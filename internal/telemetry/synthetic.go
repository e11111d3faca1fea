package telemetry

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/banshee-data/pose.report/internal/geo"
	"github.com/banshee-data/pose.report/internal/mcl"
	"gonum.org/v1/gonum/stat/distuv"
)

// SyntheticConfig describes a generated run: a vehicle driving a constant
// control input through a uniform random landmark field, observing every
// in-range landmark in its own frame with optional measurement noise.
type SyntheticConfig struct {
	Steps        int
	DeltaT       float64
	Velocity     float64 // m/s held constant over the run
	YawRate      float64 // rad/s held constant over the run
	SensorRange  float64
	NumLandmarks int
	FieldSize    float64 // landmarks drawn uniformly in [-FieldSize/2, FieldSize/2]²
	ObsNoiseStd  [2]float64
	Start        mcl.Pose
}

// Generate builds a synthetic dataset from cfg. The ground-truth trajectory
// is produced by driving a single noise-free particle through the filter's
// own motion model, so the generated controls reproduce the trajectory
// exactly under prediction.
func Generate(cfg SyntheticConfig, src rand.Source) (*Dataset, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("telemetry: steps must be positive, got %d", cfg.Steps)
	}
	if cfg.DeltaT <= 0 {
		return nil, fmt.Errorf("telemetry: delta t must be positive, got %f", cfg.DeltaT)
	}

	rng := rand.New(src)

	// Landmark field.
	m := mcl.Map{Landmarks: make([]mcl.Landmark, cfg.NumLandmarks)}
	for i := range m.Landmarks {
		m.Landmarks[i] = mcl.Landmark{
			ID: i + 1,
			X:  (rng.Float64() - 0.5) * cfg.FieldSize,
			Y:  (rng.Float64() - 0.5) * cfg.FieldSize,
		}
	}

	// Ground truth via a noise-free single-particle filter.
	tracer := mcl.NewParticleFilter(mcl.FilterConfig{NumParticles: 1}, rand.NewPCG(0, 0))
	if err := tracer.Init(cfg.Start.X, cfg.Start.Y, cfg.Start.Theta, [3]float64{0, 0, 0}); err != nil {
		return nil, err
	}

	noiseX := distuv.Normal{Mu: 0, Sigma: cfg.ObsNoiseStd[0], Src: rng}
	noiseY := distuv.Normal{Mu: 0, Sigma: cfg.ObsNoiseStd[1], Src: rng}

	ds := &Dataset{
		Map:          m,
		Controls:     make([]Control, 0, cfg.Steps),
		Observations: make([][]mcl.Observation, 0, cfg.Steps),
		GroundTruth:  make([]mcl.Pose, 0, cfg.Steps),
	}

	for step := 0; step < cfg.Steps; step++ {
		if err := tracer.Predict(cfg.DeltaT, [3]float64{0, 0, 0}, cfg.Velocity, cfg.YawRate); err != nil {
			return nil, err
		}
		gt := tracer.Particles()[0]

		obs := make([]mcl.Observation, 0)
		for _, lm := range m.Landmarks {
			if geo.Dist(gt.X, gt.Y, lm.X, lm.Y) > cfg.SensorRange {
				continue
			}
			ox, oy := geo.MapToVehicle(gt.X, gt.Y, gt.Theta, lm.X, lm.Y)
			if cfg.ObsNoiseStd[0] > 0 {
				ox += noiseX.Rand()
			}
			if cfg.ObsNoiseStd[1] > 0 {
				oy += noiseY.Rand()
			}
			obs = append(obs, mcl.Observation{X: ox, Y: oy})
		}

		ds.Controls = append(ds.Controls, Control{Velocity: cfg.Velocity, YawRate: cfg.YawRate})
		ds.Observations = append(ds.Observations, obs)
		ds.GroundTruth = append(ds.GroundTruth, mcl.Pose{X: gt.X, Y: gt.Y, Theta: gt.Theta})
	}
	return ds, nil
}

// Write serializes a dataset to dir in the flat-file layout Load expects.
func Write(dir string, ds *Dataset) error {
	if err := os.MkdirAll(filepath.Join(dir, ObservationDir), 0755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	mapOut, err := os.Create(filepath.Join(dir, MapFile))
	if err != nil {
		return err
	}
	defer mapOut.Close()
	for _, lm := range ds.Map.Landmarks {
		if _, err := fmt.Fprintf(mapOut, "%v %v %d\n", lm.X, lm.Y, lm.ID); err != nil {
			return err
		}
	}

	ctlOut, err := os.Create(filepath.Join(dir, ControlFile))
	if err != nil {
		return err
	}
	defer ctlOut.Close()
	for _, c := range ds.Controls {
		if _, err := fmt.Fprintf(ctlOut, "%v %v\n", c.Velocity, c.YawRate); err != nil {
			return err
		}
	}

	if len(ds.GroundTruth) > 0 {
		gtOut, err := os.Create(filepath.Join(dir, GroundTruthFile))
		if err != nil {
			return err
		}
		defer gtOut.Close()
		for _, p := range ds.GroundTruth {
			if _, err := fmt.Fprintf(gtOut, "%v %v %v\n", p.X, p.Y, p.Theta); err != nil {
				return err
			}
		}
	}

	for i, obs := range ds.Observations {
		path := filepath.Join(dir, ObservationDir, fmt.Sprintf("observations_%06d.txt", i+1))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		for _, o := range obs {
			if _, err := fmt.Fprintf(f, "%v %v\n", o.X, o.Y); err != nil {
				f.Close()
				return err
			}
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
