// Package mcl implements sequential importance resampling (SIR) Monte Carlo
// localization against a known landmark map: particle initialization from a
// coarse pose prior, bicycle-model prediction with injected process noise,
// nearest-neighbour observation association, bivariate-Gaussian weight
// updates, and weighted resampling.
//
// The filter is driven one timestep at a time by an external harness:
// Predict → UpdateWeights → Resample, with Init called exactly once before
// the first Predict. All randomness flows through a single injected source so
// runs are reproducible.
package mcl

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// FilterConfig holds configuration parameters for the particle filter.
type FilterConfig struct {
	NumParticles int // Particle count, fixed at Init (typically 100-200)

	// UpdateParallelism is the number of goroutines used for the weight
	// update. Values <= 1 run the update serially. Weight computation is
	// pure per particle, so any degree of parallelism is safe.
	UpdateParallelism int

	// RecordAssociations enables the per-particle diagnostic record of
	// observation-to-landmark matches on each weight update.
	RecordAssociations bool
}

// Pose is a point estimate extracted from the particle set.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// ParticleFilter owns the particle collection and exposes the SIR lifecycle.
// All exported methods are safe for concurrent use; accessors return
// snapshot copies so callers never observe a generation mid-mutation.
type ParticleFilter struct {
	mu          sync.RWMutex
	cfg         FilterConfig
	rng         *rand.Rand
	particles   []Particle
	initialized bool
}

// NewParticleFilter creates a filter with the given configuration and random
// source. The source is used for initialization noise, process noise and
// resampling draws; pass a fixed-seed source for reproducible runs.
func NewParticleFilter(cfg FilterConfig, src rand.Source) *ParticleFilter {
	return &ParticleFilter{
		cfg: cfg,
		rng: rand.New(src),
	}
}

// Init draws NumParticles independent samples from a Gaussian prior centred
// on (x, y, theta) with per-axis standard deviations std, assigns each an
// initial weight of 1.0 and a sequential ID. It must be called exactly once
// before the first Predict; calling it again re-initializes the filter.
func (pf *ParticleFilter) Init(x, y, theta float64, std [3]float64) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if pf.cfg.NumParticles <= 0 {
		return fmt.Errorf("mcl: particle count must be positive, got %d", pf.cfg.NumParticles)
	}

	distX := newNormal(x, std[0], pf.rng)
	distY := newNormal(y, std[1], pf.rng)
	distTheta := newNormal(theta, std[2], pf.rng)

	pf.particles = make([]Particle, pf.cfg.NumParticles)
	for i := range pf.particles {
		pf.particles[i] = Particle{
			ID:     i,
			X:      sample(distX, x),
			Y:      sample(distY, y),
			Theta:  sample(distTheta, theta),
			Weight: 1.0,
		}
	}
	pf.initialized = true
	return nil
}

// Initialized reports whether Init has completed.
func (pf *ParticleFilter) Initialized() bool {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.initialized
}

// NumParticles returns the configured particle count.
func (pf *ParticleFilter) NumParticles() int {
	return pf.cfg.NumParticles
}

// Particles returns a snapshot copy of the current particle set, safe to
// read without holding the filter lock.
func (pf *ParticleFilter) Particles() []Particle {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	out := make([]Particle, len(pf.particles))
	for i, p := range pf.particles {
		out[i] = p.clone()
	}
	return out
}

// Best returns a copy of the highest-weight particle.
func (pf *ParticleFilter) Best() (Particle, error) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	if len(pf.particles) == 0 {
		return Particle{}, ErrNoParticles
	}
	best := 0
	for i := range pf.particles {
		if pf.particles[i].Weight > pf.particles[best].Weight {
			best = i
		}
	}
	return pf.particles[best].clone(), nil
}

// Estimate returns the weight-averaged pose of the particle set. Headings
// are averaged on the unit circle so estimates remain meaningful when the
// set straddles the ±π seam. Falls back to a uniform average when the total
// weight is zero.
func (pf *ParticleFilter) Estimate() (Pose, error) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	if len(pf.particles) == 0 {
		return Pose{}, ErrNoParticles
	}

	var total, sumX, sumY, sumSin, sumCos float64
	for i := range pf.particles {
		total += pf.particles[i].Weight
	}
	uniform := total <= 0
	for i := range pf.particles {
		w := pf.particles[i].Weight
		if uniform {
			w = 1.0
		}
		sumX += w * pf.particles[i].X
		sumY += w * pf.particles[i].Y
		sin, cos := math.Sincos(pf.particles[i].Theta)
		sumSin += w * sin
		sumCos += w * cos
	}
	if uniform {
		total = float64(len(pf.particles))
	}
	return Pose{
		X:     sumX / total,
		Y:     sumY / total,
		Theta: math.Atan2(sumSin, sumCos),
	}, nil
}

// WriteSnapshot appends one "x y theta" line per particle, in particle
// order. Repeated calls accumulate a full snapshot per timestep in the
// destination writer.
func (pf *ParticleFilter) WriteSnapshot(w io.Writer) error {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	for i := range pf.particles {
		p := &pf.particles[i]
		if _, err := fmt.Fprintf(w, "%v %v %v\n", p.X, p.Y, p.Theta); err != nil {
			return fmt.Errorf("mcl: write snapshot: %w", err)
		}
	}
	return nil
}

// newNormal builds a Gaussian sampler on the filter's random stream.
func newNormal(mu, sigma float64, src rand.Source) distuv.Normal {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
}

// sample draws from dist, returning the fallback mean directly when the
// distribution is degenerate (zero standard deviation).
func sample(dist distuv.Normal, mean float64) float64 {
	if dist.Sigma <= 0 {
		return mean
	}
	return dist.Rand()
}
