package mcl

import "math"

// minYawRate is the hard tolerance below which the bicycle model switches to
// its straight-line form to avoid dividing by a near-zero angular rate.
const minYawRate = 1e-4

// Predict advances every particle one timestep under the bicycle kinematic
// model with control input (velocity, yawRate), then injects independent
// zero-mean Gaussian process noise with per-axis standard deviations std.
// Noise is sampled fresh per particle per axis; sharing samples across
// particles would collapse the diversity resampling depends on.
func (pf *ParticleFilter) Predict(deltaT float64, std [3]float64, velocity, yawRate float64) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if !pf.initialized {
		return ErrNotInitialized
	}

	noiseX := newNormal(0, std[0], pf.rng)
	noiseY := newNormal(0, std[1], pf.rng)
	noiseTheta := newNormal(0, std[2], pf.rng)

	for i := range pf.particles {
		p := &pf.particles[i]
		stepBicycle(p, deltaT, velocity, yawRate)
		p.X += sample(noiseX, 0)
		p.Y += sample(noiseY, 0)
		p.Theta += sample(noiseTheta, 0)
	}
	return nil
}

// stepBicycle applies the deterministic bicycle-model kinematics to a single
// particle. The curved and straight-line branches agree in the limit as the
// yaw rate approaches zero.
func stepBicycle(p *Particle, dt, velocity, yawRate float64) {
	theta := p.Theta
	if math.Abs(yawRate) > minYawRate {
		p.X += velocity / yawRate * (math.Sin(theta+yawRate*dt) - math.Sin(theta))
		p.Y += velocity / yawRate * (math.Cos(theta) - math.Cos(theta+yawRate*dt))
	} else {
		p.X += velocity * dt * math.Cos(theta)
		p.Y += velocity * dt * math.Sin(theta)
	}
	p.Theta = theta + yawRate*dt
}
