// Command pf-sweep runs the filter over one dataset at a range of particle
// counts and reports accuracy and runtime per count, to pick the smallest
// cloud that still tracks.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/pose.report/internal/config"
	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/metrics"
	"github.com/banshee-data/pose.report/internal/telemetry"
)

// parseCSVIntSlice parses a comma-separated list of ints
func parseCSVIntSlice(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	dataDir := flag.String("data", "", "dataset directory with ground truth")
	configPath := flag.String("config", "", "tuning config JSON")
	counts := flag.String("counts", "10,25,50,100,250,500,1000", "particle counts to sweep")
	iters := flag.Int("iters", 3, "runs per count (different seeds)")
	output := flag.String("o", "sweep.csv", "output CSV path")
	flag.Parse()

	if *dataDir == "" {
		log.Fatal("-data is required")
	}
	particleCounts, err := parseCSVIntSlice(*counts)
	if err != nil {
		log.Fatalf("invalid -counts: %v", err)
	}

	cfg := config.MustLoadDefaultConfig()
	if *configPath != "" {
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	ds, err := telemetry.Load(*dataDir)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	if len(ds.GroundTruth) < ds.Steps() {
		log.Fatal("sweep needs ground truth for every timestep")
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	w.Write([]string{"num_particles", "iter", "seed", "rmse_x_m", "rmse_y_m", "rmse_yaw_rad", "max_x_m", "max_y_m", "runtime_ms"})

	for _, n := range particleCounts {
		for iter := 0; iter < *iters; iter++ {
			seed := cfg.GetSeed() + uint64(iter)
			summary, runtime, err := runOnce(cfg, ds, n, seed)
			if err != nil {
				log.Fatalf("run failed (n=%d iter=%d): %v", n, iter, err)
			}
			w.Write([]string{
				strconv.Itoa(n),
				strconv.Itoa(iter),
				strconv.FormatUint(seed, 10),
				fmt.Sprintf("%g", summary.X.RMSE),
				fmt.Sprintf("%g", summary.Y.RMSE),
				fmt.Sprintf("%g", summary.Yaw.RMSE),
				fmt.Sprintf("%g", summary.X.Max),
				fmt.Sprintf("%g", summary.Y.Max),
				fmt.Sprintf("%g", float64(runtime.Nanoseconds())/1e6),
			})
			log.Printf("n=%d iter=%d: %s (%v)", n, iter, summary, runtime)
		}
	}
	log.Printf("✓ Wrote: %s", *output)
}

func runOnce(cfg *config.TuningConfig, ds *telemetry.Dataset, numParticles int, seed uint64) (metrics.Summary, time.Duration, error) {
	fc := mcl.FilterConfigFromTuning(cfg)
	fc.NumParticles = numParticles
	pf := mcl.NewParticleFilter(fc, rand.NewPCG(seed, seed))

	start := ds.GroundTruth[0]
	if err := pf.Init(start.X, start.Y, start.Theta, cfg.GetGPSStd()); err != nil {
		return metrics.Summary{}, 0, err
	}

	deltaT := cfg.GetDeltaTSeconds()
	processStd := cfg.GetProcessStd()
	landmarkStd := cfg.GetLandmarkStd()
	sensorRange := cfg.GetSensorRangeM()

	acc := metrics.NewAccumulator()
	began := time.Now()
	for step := 0; step < ds.Steps(); step++ {
		ctl := ds.Controls[step]
		if err := pf.Predict(deltaT, processStd, ctl.Velocity, ctl.YawRate); err != nil {
			return metrics.Summary{}, 0, err
		}
		if err := pf.UpdateWeights(sensorRange, landmarkStd, ds.Observations[step], ds.Map); err != nil {
			return metrics.Summary{}, 0, err
		}
		if err := pf.Resample(); err != nil {
			return metrics.Summary{}, 0, err
		}
		est, err := pf.Estimate()
		if err != nil {
			return metrics.Summary{}, 0, err
		}
		acc.Record(step, est, ds.GroundTruth[step])
	}
	return acc.Summarize(), time.Since(began), nil
}
