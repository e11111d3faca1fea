// Package geo provides the 2D geometry primitives shared by the localization
// pipeline: Euclidean distance, the vehicle-to-map rigid transform, the
// bivariate Gaussian density used by the sensor model, and angle arithmetic.
package geo

import "math"

// Dist returns the Euclidean distance between (x1, y1) and (x2, y2).
func Dist(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// VehicleToMap transforms a point observed in the vehicle frame into the map
// frame, given the observer's pose (px, py, ptheta) in the map frame. The
// transform is a rotation by ptheta followed by a translation to (px, py);
// there is no scaling.
func VehicleToMap(px, py, ptheta, ox, oy float64) (mx, my float64) {
	sin, cos := math.Sincos(ptheta)
	mx = px + ox*cos - oy*sin
	my = py + ox*sin + oy*cos
	return mx, my
}

// MapToVehicle is the inverse of VehicleToMap: it expresses a map-frame
// point (mx, my) in the frame of an observer at pose (px, py, ptheta).
func MapToVehicle(px, py, ptheta, mx, my float64) (ox, oy float64) {
	sin, cos := math.Sincos(ptheta)
	dx := mx - px
	dy := my - py
	ox = dx*cos + dy*sin
	oy = -dx*sin + dy*cos
	return ox, oy
}

// Gauss2D evaluates the bivariate Gaussian density with independent axes at
// offset (dx, dy) from the mean, with per-axis standard deviations sigX and
// sigY. The peak value (dx = dy = 0) is 1 / (2π·sigX·sigY).
func Gauss2D(dx, dy, sigX, sigY float64) float64 {
	norm := 1.0 / (2.0 * math.Pi * sigX * sigY)
	exponent := dx*dx/(2.0*sigX*sigX) + dy*dy/(2.0*sigY*sigY)
	return norm * math.Exp(-exponent)
}

// AngleDiff returns the signed difference a-b wrapped to [-π, π]. Particle
// headings are deliberately left unbounded, so any comparison between two
// headings must go through this wrap.
func AngleDiff(a, b float64) float64 {
	d := a - b
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
