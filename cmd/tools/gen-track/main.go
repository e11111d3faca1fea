// Command gen-track generates synthetic localization datasets for testing
// the filter without a recorded drive.
package main

import (
	"flag"
	"log"
	"math/rand/v2"

	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/telemetry"
)

func main() {
	output := flag.String("o", "data/synthetic", "output dataset directory")
	steps := flag.Int("n", 200, "number of timesteps")
	deltaT := flag.Float64("dt", 0.1, "timestep in seconds")
	velocity := flag.Float64("v", 5.0, "vehicle speed in m/s")
	yawRate := flag.Float64("w", 0.1, "yaw rate in rad/s")
	sensorRange := flag.Float64("range", 50.0, "sensor range in metres")
	landmarks := flag.Int("landmarks", 40, "number of landmarks")
	fieldSize := flag.Float64("field", 200.0, "landmark field edge length in metres")
	obsNoise := flag.Float64("noise", 0.3, "observation noise std in metres (both axes)")
	seed := flag.Uint64("seed", 1, "RNG seed")
	flag.Parse()

	ds, err := telemetry.Generate(telemetry.SyntheticConfig{
		Steps:        *steps,
		DeltaT:       *deltaT,
		Velocity:     *velocity,
		YawRate:      *yawRate,
		SensorRange:  *sensorRange,
		NumLandmarks: *landmarks,
		FieldSize:    *fieldSize,
		ObsNoiseStd:  [2]float64{*obsNoise, *obsNoise},
		Start:        mcl.Pose{},
	}, rand.NewPCG(*seed, *seed))
	if err != nil {
		log.Fatalf("failed to generate dataset: %v", err)
	}

	if err := telemetry.Write(*output, ds); err != nil {
		log.Fatalf("failed to write dataset: %v", err)
	}
	log.Printf("✓ Created: %s (%d steps, %d landmarks)", *output, ds.Steps(), len(ds.Map.Landmarks))
}
