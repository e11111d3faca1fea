package mcl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleKeepsOnlyPositiveWeightParticle(t *testing.T) {
	t.Parallel()

	pf := newTestFilter(t, 3, 20)
	require.NoError(t, pf.Init(0, 0, 0, [3]float64{0, 0, 0}))

	setParticles := func() {
		pf.mu.Lock()
		pf.particles[0] = Particle{ID: 0, X: 1, Weight: 0}
		pf.particles[1] = Particle{ID: 1, X: 2, Weight: 1}
		pf.particles[2] = Particle{ID: 2, X: 3, Weight: 0}
		pf.mu.Unlock()
	}

	for trial := 0; trial < 200; trial++ {
		setParticles()
		require.NoError(t, pf.Resample())
		for _, p := range pf.Particles() {
			assert.Equal(t, 1, p.ID)
			assert.Equal(t, 2.0, p.X)
		}
	}
}

func TestResampleProportionalToWeight(t *testing.T) {
	t.Parallel()

	pf := newTestFilter(t, 10000, 21)
	require.NoError(t, pf.Init(0, 0, 0, [3]float64{0, 0, 0}))

	// Two hypotheses with a 3:1 weight ratio; weights are deliberately left
	// unnormalised, the resampler must handle that itself.
	pf.mu.Lock()
	for i := range pf.particles {
		if i%2 == 0 {
			pf.particles[i].X = 1
			pf.particles[i].Weight = 7.5
		} else {
			pf.particles[i].X = 2
			pf.particles[i].Weight = 2.5
		}
	}
	pf.mu.Unlock()

	require.NoError(t, pf.Resample())

	count1 := 0
	for _, p := range pf.Particles() {
		if p.X == 1 {
			count1++
		}
	}
	frac := float64(count1) / 10000.0
	assert.InDelta(t, 0.75, frac, 0.03)
}

func TestResampleAllZeroWeightsFallsBackToUniform(t *testing.T) {
	t.Parallel()

	pf := newTestFilter(t, 1000, 22)
	require.NoError(t, pf.Init(0, 0, 0, [3]float64{1, 1, 0.1}))

	pf.mu.Lock()
	for i := range pf.particles {
		pf.particles[i].Weight = 0
	}
	pf.mu.Unlock()

	require.NoError(t, pf.Resample())

	particles := pf.Particles()
	require.Len(t, particles, 1000)

	// A uniform draw over a diverse set should keep many distinct poses.
	seen := make(map[float64]bool)
	for _, p := range particles {
		seen[p.X] = true
	}
	assert.Greater(t, len(seen), 400)
}

func TestResamplePreservesParticleCountAndIDs(t *testing.T) {
	t.Parallel()

	pf := newTestFilter(t, 100, 23)
	require.NoError(t, pf.Init(0, 0, 0, [3]float64{1, 1, 0.1}))

	require.NoError(t, pf.Resample())
	particles := pf.Particles()
	require.Len(t, particles, 100)

	// IDs come from the prior generation untouched; every ID must be one
	// that existed before the draw.
	for _, p := range particles {
		assert.GreaterOrEqual(t, p.ID, 0)
		assert.Less(t, p.ID, 100)
	}
}
