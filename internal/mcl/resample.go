package mcl

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Resample replaces the particle set with N independent draws, with
// replacement, from the current weight distribution. Weights are treated as
// unnormalised relative likelihoods; the categorical distribution built here
// assigns particle i probability mass weight[i] / Σweight[j].
//
// When every weight is zero the distribution is undefined — the filter has
// diverged — so the draw falls back to uniform selection, which preserves
// the particle count and lets the next prediction step re-spread the set.
func (pf *ParticleFilter) Resample() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if !pf.initialized {
		return ErrNotInitialized
	}
	n := len(pf.particles)
	if n == 0 {
		return ErrNoParticles
	}

	weights := make([]float64, n)
	total := 0.0
	for i := range pf.particles {
		w := pf.particles[i].Weight
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}

	next := make([]Particle, n)
	if total <= 0 {
		for i := range next {
			next[i] = pf.particles[pf.rng.IntN(n)].clone()
		}
		pf.particles = next
		return nil
	}

	dist := distuv.NewCategorical(weights, pf.rng)
	for i := range next {
		next[i] = pf.particles[int(dist.Rand())].clone()
	}
	pf.particles = next
	return nil
}
