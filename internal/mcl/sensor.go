package mcl

import (
	"math"
	"sync"

	"github.com/banshee-data/pose.report/internal/geo"
)

// UpdateWeights recomputes every particle's importance weight from scratch
// against the latest vehicle-frame observations. Per particle, independently:
//
//  1. Restrict the map to landmarks within sensorRange of the particle's own
//     pose hypothesis.
//  2. Transform each observation into the map frame under that pose.
//  3. Associate each transformed observation to its nearest candidate.
//  4. Multiply per-observation bivariate Gaussian likelihoods (per-axis
//     standard deviations std) into the particle's weight.
//
// An empty observation list leaves every weight at the empty-product
// identity 1.0. A particle with observations but no landmark in range gets
// weight zero: the hypothesis places the vehicle somewhere the sensor could
// not have seen what it saw.
//
// Steps 2-4 are pure per particle, so the loop runs on
// FilterConfig.UpdateParallelism goroutines when configured.
func (pf *ParticleFilter) UpdateWeights(sensorRange float64, std [2]float64, observations []Observation, m Map) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if !pf.initialized {
		return ErrNotInitialized
	}
	if len(observations) > 0 && len(m.Landmarks) == 0 {
		return ErrEmptyMap
	}

	workers := pf.cfg.UpdateParallelism
	if workers <= 1 || len(pf.particles) < workers {
		for i := range pf.particles {
			pf.weighParticle(&pf.particles[i], sensorRange, std, observations, m)
		}
		return nil
	}

	var wg sync.WaitGroup
	chunk := (len(pf.particles) + workers - 1) / workers
	for start := 0; start < len(pf.particles); start += chunk {
		end := start + chunk
		if end > len(pf.particles) {
			end = len(pf.particles)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				pf.weighParticle(&pf.particles[i], sensorRange, std, observations, m)
			}
		}(start, end)
	}
	wg.Wait()
	return nil
}

// weighParticle runs the transform → filter → associate → likelihood pipeline
// for a single particle. Pure except for the particle mutation: the input
// observations are never modified, since other particles reuse them.
func (pf *ParticleFilter) weighParticle(p *Particle, sensorRange float64, std [2]float64, observations []Observation, m Map) {
	p.clearAssociations()

	if len(observations) == 0 {
		p.Weight = 1.0
		return
	}

	candidates := landmarksInRange(m, p.X, p.Y, sensorRange)
	if len(candidates) == 0 {
		p.Weight = 0
		return
	}

	mapped := transformObservations(p, observations)
	matched, err := AssociateNearest(candidates, mapped)
	if err != nil {
		p.Weight = 0
		return
	}

	weight := 1.0
	for i := range mapped {
		dx := matched[i].X - mapped[i].X
		dy := matched[i].Y - mapped[i].Y
		weight *= geo.Gauss2D(dx, dy, std[0], std[1])
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		weight = 0
	}
	p.Weight = weight

	if pf.cfg.RecordAssociations {
		ids := make([]int, len(mapped))
		senseX := make([]float64, len(mapped))
		senseY := make([]float64, len(mapped))
		for i := range mapped {
			ids[i] = matched[i].ID
			senseX[i] = mapped[i].X
			senseY[i] = mapped[i].Y
		}
		p.SetAssociations(ids, senseX, senseY)
	}
}

// transformObservations maps vehicle-frame observations into the map frame
// under the particle's pose, returning new observations and leaving the
// inputs untouched.
func transformObservations(p *Particle, observations []Observation) []Observation {
	mapped := make([]Observation, len(observations))
	for i, obs := range observations {
		mx, my := geo.VehicleToMap(p.X, p.Y, p.Theta, obs.X, obs.Y)
		mapped[i] = Observation{ID: obs.ID, X: mx, Y: my}
	}
	return mapped
}

// landmarksInRange returns the map landmarks within sensorRange of (x, y).
func landmarksInRange(m Map, x, y, sensorRange float64) []Landmark {
	out := make([]Landmark, 0, len(m.Landmarks))
	for _, lm := range m.Landmarks {
		if geo.Dist(x, y, lm.X, lm.Y) <= sensorRange {
			out = append(out, lm)
		}
	}
	return out
}
