// Command localizer runs the particle filter over a recorded dataset or a
// live serial telemetry feed, tracking the vehicle pose against a known
// landmark map.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/pose.report/internal/api"
	"github.com/banshee-data/pose.report/internal/config"
	"github.com/banshee-data/pose.report/internal/feed"
	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/metrics"
	"github.com/banshee-data/pose.report/internal/plotting"
	"github.com/banshee-data/pose.report/internal/runlog"
	"github.com/banshee-data/pose.report/internal/telemetry"
)

var (
	dataDir    = flag.String("data", "", "dataset directory (map_data.txt, control_data.txt, observation/)")
	configPath = flag.String("config", "", "tuning config JSON (defaults baked in when empty)")
	serialPath = flag.String("serial", "", "serial device for live telemetry instead of -data")
	listen     = flag.String("listen", "", "HTTP listen address (empty disables the server)")
	runlogPath = flag.String("runlog", "", "sqlite file for run logging (empty disables)")
	plotDir    = flag.String("plots", "", "directory for post-run plots (empty disables)")
	snapshot   = flag.String("snapshot", "", "write final particle snapshot to this file")
	errorCSV   = flag.String("errors", "", "write per-step error CSV to this file")
)

func main() {
	flag.Parse()

	if (*dataDir == "") == (*serialPath == "") {
		log.Fatal("exactly one of -data or -serial is required")
	}

	cfg := loadConfig()
	pf := mcl.NewParticleFilter(
		mcl.FilterConfigFromTuning(cfg),
		rand.NewPCG(cfg.GetSeed(), cfg.GetSeed()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *runlog.DB
	if *runlogPath != "" {
		var err error
		db, err = runlog.NewDB(*runlogPath)
		if err != nil {
			log.Fatalf("failed to open run log: %v", err)
		}
		defer db.Close()
	}

	if *dataDir != "" {
		runDataset(ctx, cfg, pf, db)
		return
	}
	runLive(ctx, cfg, pf, db)
}

func loadConfig() *config.TuningConfig {
	if *configPath == "" {
		return config.MustLoadDefaultConfig()
	}
	cfg, err := config.LoadTuningConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// startServer exposes the filter over HTTP until ctx is cancelled.
func startServer(ctx context.Context, wg *sync.WaitGroup, pf *mcl.ParticleFilter, db *runlog.DB, landmarks []mcl.Landmark) {
	if *listen == "" {
		return
	}
	srv := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(api.NewServer(pf, db, landmarks).ServeMux()),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP server listening on %s", *listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
}

func runDataset(ctx context.Context, cfg *config.TuningConfig, pf *mcl.ParticleFilter, db *runlog.DB) {
	ds, err := telemetry.Load(*dataDir)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	if len(ds.GroundTruth) == 0 {
		log.Fatalf("dataset %s has no ground truth; the first pose seeds the GPS prior", *dataDir)
	}

	// Simulated GPS fix: the true start pose plus GPS-grade noise.
	gpsStd := cfg.GetGPSStd()
	seed := cfg.GetSeed()
	gpsRng := rand.New(rand.NewPCG(seed+1, seed+1))
	fix := ds.GroundTruth[0]
	fix.X += noise(gpsStd[0], gpsRng)
	fix.Y += noise(gpsStd[1], gpsRng)
	fix.Theta += noise(gpsStd[2], gpsRng)

	if err := pf.Init(fix.X, fix.Y, fix.Theta, gpsStd); err != nil {
		log.Fatalf("failed to initialize filter: %v", err)
	}

	var wg sync.WaitGroup
	startServer(ctx, &wg, pf, db, ds.Map.Landmarks)

	var runID string
	if db != nil {
		runID, err = db.StartRun(*dataDir, pf.NumParticles(), seed)
		if err != nil {
			log.Fatalf("failed to start run log: %v", err)
		}
		log.Printf("logging run %s", runID)
	}

	var tp *plotting.TrajectoryPlotter
	if *plotDir != "" {
		tp, err = plotting.NewTrajectoryPlotter(*plotDir, ds.Map.Landmarks)
		if err != nil {
			log.Fatalf("failed to create plotter: %v", err)
		}
	}

	acc := metrics.NewAccumulator()
	deltaT := cfg.GetDeltaTSeconds()
	processStd := cfg.GetProcessStd()
	landmarkStd := cfg.GetLandmarkStd()
	sensorRange := cfg.GetSensorRangeM()

	for step := 0; step < ds.Steps(); step++ {
		if ctx.Err() != nil {
			log.Printf("interrupted at step %d", step)
			break
		}

		ctl := ds.Controls[step]
		if err := pf.Predict(deltaT, processStd, ctl.Velocity, ctl.YawRate); err != nil {
			log.Fatalf("predict failed at step %d: %v", step, err)
		}
		if err := pf.UpdateWeights(sensorRange, landmarkStd, ds.Observations[step], ds.Map); err != nil {
			log.Fatalf("weight update failed at step %d: %v", step, err)
		}
		if err := pf.Resample(); err != nil {
			log.Fatalf("resample failed at step %d: %v", step, err)
		}

		est, err := pf.Estimate()
		if err != nil {
			log.Fatalf("estimate failed at step %d: %v", step, err)
		}

		hasTruth := step < len(ds.GroundTruth)
		var gt mcl.Pose
		if hasTruth {
			gt = ds.GroundTruth[step]
			acc.Record(step, est, gt)
		}
		if tp != nil {
			tp.Sample(est, gt, hasTruth)
		}
		if db != nil && hasTruth {
			stepErrs := acc.Steps()
			if err := db.RecordStep(runID, est, gt, stepErrs[len(stepErrs)-1]); err != nil {
				log.Printf("failed to log step %d: %v", step, err)
			}
		}
	}

	log.Printf("run complete: %s", acc.Summarize())

	if *errorCSV != "" {
		f, err := os.Create(*errorCSV)
		if err != nil {
			log.Fatalf("failed to create error CSV: %v", err)
		}
		if err := acc.WriteCSV(f); err != nil {
			log.Fatalf("failed to write error CSV: %v", err)
		}
		f.Close()
	}
	if *snapshot != "" {
		f, err := os.Create(*snapshot)
		if err != nil {
			log.Fatalf("failed to create snapshot: %v", err)
		}
		if err := pf.WriteSnapshot(f); err != nil {
			log.Fatalf("failed to write snapshot: %v", err)
		}
		f.Close()
	}
	if tp != nil {
		written, err := tp.GeneratePlots(acc.Steps())
		if err != nil {
			log.Fatalf("failed to generate plots: %v", err)
		}
		for _, path := range written {
			log.Printf("wrote %s", path)
		}
	}

	if *listen != "" {
		log.Printf("run finished; serving until interrupted")
		<-ctx.Done()
	}
	wg.Wait()
}

// runLive drives the filter from a serial telemetry feed. The map still
// comes from a dataset directory next to the device recording; only the
// controls, observations and the initial GPS fix arrive over the wire.
func runLive(ctx context.Context, cfg *config.TuningConfig, pf *mcl.ParticleFilter, db *runlog.DB) {
	mapPath := flag.Arg(0)
	if mapPath == "" {
		log.Fatal("live mode needs the landmark map file as the first argument")
	}
	m, err := telemetry.ReadMap(mapPath)
	if err != nil {
		log.Fatalf("failed to load map: %v", err)
	}

	f, err := feed.OpenSerial(*serialPath, feed.DefaultPortMode())
	if err != nil {
		log.Fatalf("failed to open serial feed: %v", err)
	}
	defer f.Close()

	var wg sync.WaitGroup
	startServer(ctx, &wg, pf, db, m.Landmarks)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := f.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("feed monitor stopped: %v", err)
		}
	}()

	id, frames := f.Subscribe()
	defer f.Unsubscribe(id)

	deltaT := cfg.GetDeltaTSeconds()
	gpsStd := cfg.GetGPSStd()
	processStd := cfg.GetProcessStd()
	landmarkStd := cfg.GetLandmarkStd()
	sensorRange := cfg.GetSensorRangeM()

	var lastControl telemetry.Control
	haveControl := false
	step := 0

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case frame, ok := <-frames:
			if !ok {
				wg.Wait()
				return
			}
			switch frame.Type {
			case feed.FrameFix:
				if pf.Initialized() {
					continue
				}
				if err := pf.Init(frame.Fix.X, frame.Fix.Y, frame.Fix.Theta, gpsStd); err != nil {
					log.Fatalf("failed to initialize filter: %v", err)
				}
				log.Printf("initialized from GPS fix (%.2f, %.2f, %.3f)", frame.Fix.X, frame.Fix.Y, frame.Fix.Theta)

			case feed.FrameControl:
				lastControl = frame.Control
				haveControl = true

			case feed.FrameObservations:
				if !pf.Initialized() || !haveControl {
					continue
				}
				if err := pf.Predict(deltaT, processStd, lastControl.Velocity, lastControl.YawRate); err != nil {
					log.Printf("predict failed: %v", err)
					continue
				}
				if err := pf.UpdateWeights(sensorRange, landmarkStd, frame.Observations, m); err != nil {
					log.Printf("weight update failed: %v", err)
					continue
				}
				if err := pf.Resample(); err != nil {
					log.Printf("resample failed: %v", err)
					continue
				}
				step++
				if step%50 == 0 {
					if est, err := pf.Estimate(); err == nil {
						log.Printf("step %d: pose (%.2f, %.2f, %.3f)", step, est.X, est.Y, est.Theta)
					}
				}
			}
		}
	}
}

func noise(sigma float64, rng *rand.Rand) float64 {
	if sigma <= 0 {
		return 0
	}
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}.Rand()
}
