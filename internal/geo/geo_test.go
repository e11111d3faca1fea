package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDist(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Dist(1, 2, 1, 2))
	assert.InDelta(t, 5.0, Dist(0, 0, 3, 4), 1e-12)
	assert.InDelta(t, math.Sqrt2, Dist(1, 1, 2, 2), 1e-12)
}

func TestVehicleToMap(t *testing.T) {
	t.Parallel()

	t.Run("identity pose leaves observation unchanged", func(t *testing.T) {
		t.Parallel()
		mx, my := VehicleToMap(0, 0, 0, 2.5, -1.5)
		assert.InDelta(t, 2.5, mx, 1e-12)
		assert.InDelta(t, -1.5, my, 1e-12)
	})

	t.Run("rotation plus translation", func(t *testing.T) {
		t.Parallel()
		// Observer at (4, 5) heading -90°: an observation at (2, 2) in the
		// vehicle frame lands at (6, 3) in the map frame.
		mx, my := VehicleToMap(4, 5, -math.Pi/2, 2, 2)
		assert.InDelta(t, 6.0, mx, 1e-9)
		assert.InDelta(t, 3.0, my, 1e-9)
	})

	t.Run("pure translation", func(t *testing.T) {
		t.Parallel()
		mx, my := VehicleToMap(10, -3, 0, 1, 1)
		assert.InDelta(t, 11.0, mx, 1e-12)
		assert.InDelta(t, -2.0, my, 1e-12)
	})
}

func TestMapToVehicleRoundTrip(t *testing.T) {
	t.Parallel()

	px, py, ptheta := 4.0, 5.0, -math.Pi/2
	ox, oy := MapToVehicle(px, py, ptheta, 6, 3)
	assert.InDelta(t, 2.0, ox, 1e-9)
	assert.InDelta(t, 2.0, oy, 1e-9)

	// Forward then inverse recovers the original vehicle-frame point.
	mx, my := VehicleToMap(px, py, ptheta, ox, oy)
	bx, by := MapToVehicle(px, py, ptheta, mx, my)
	assert.InDelta(t, ox, bx, 1e-9)
	assert.InDelta(t, oy, by, 1e-9)
}

func TestGauss2D(t *testing.T) {
	t.Parallel()

	t.Run("peak value at zero offset", func(t *testing.T) {
		t.Parallel()
		sigX, sigY := 0.3, 0.3
		want := 1.0 / (2.0 * math.Pi * sigX * sigY)
		assert.InDelta(t, want, Gauss2D(0, 0, sigX, sigY), 1e-12)
	})

	t.Run("symmetric in offset sign", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, Gauss2D(0.5, -0.2, 0.3, 0.4), Gauss2D(-0.5, 0.2, 0.3, 0.4), 1e-15)
	})

	t.Run("decays with distance", func(t *testing.T) {
		t.Parallel()
		near := Gauss2D(0.1, 0.1, 0.3, 0.3)
		far := Gauss2D(1.0, 1.0, 0.3, 0.3)
		assert.Greater(t, near, far)
		assert.Greater(t, far, 0.0)
	})
}

func TestAngleDiff(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, AngleDiff(math.Pi, math.Pi), 1e-12)
	assert.InDelta(t, -0.2, AngleDiff(0.1, 0.3), 1e-12)
	// Wrap across the ±π seam.
	assert.InDelta(t, 0.2, AngleDiff(-math.Pi+0.1, math.Pi-0.1), 1e-12)
	// Unbounded headings wrap back into range.
	assert.InDelta(t, 0.0, AngleDiff(4*math.Pi, 0), 1e-12)
}
