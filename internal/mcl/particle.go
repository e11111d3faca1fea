package mcl

import (
	"strconv"
	"strings"
)

// Particle is a single pose hypothesis carried by the filter, with an
// importance weight relative to the rest of its generation.
type Particle struct {
	// ID is unique within a generation. IDs are assigned 0..N-1 during Init
	// and copied untouched by Resample, so they carry no lineage meaning
	// across generations.
	ID int

	// Pose in the map frame. Theta is in radians and deliberately unbounded;
	// comparisons between headings must wrap (see geo.AngleDiff).
	X     float64
	Y     float64
	Theta float64

	// Weight is the unnormalised importance weight. Non-negative; zero means
	// the hypothesis is implausible given the latest observations.
	Weight float64

	// Diagnostic record of the most recent weight update: the landmark ID
	// each observation was matched to, and the map-frame coordinates the
	// observation was sensed at. Populated only when the filter is
	// configured to record associations.
	Associations []int
	SenseX       []float64
	SenseY       []float64
}

// Observation is a single landmark detection. Coordinates are in the vehicle
// frame as received from the sensor, or in the map frame after transformation.
// ID is unset until association assigns the matched landmark's ID.
type Observation struct {
	ID int
	X  float64
	Y  float64
}

// Landmark is a static map entity in the map frame.
type Landmark struct {
	ID int
	X  float64
	Y  float64
}

// Map is the read-only landmark map supplied once per filter lifetime.
type Map struct {
	Landmarks []Landmark
}

// SetAssociations replaces the particle's diagnostic association record.
// ids, senseX and senseY are parallel sequences: one entry per observation
// from the most recent weight update.
func (p *Particle) SetAssociations(ids []int, senseX, senseY []float64) {
	p.Associations = ids
	p.SenseX = senseX
	p.SenseY = senseY
}

// clearAssociations drops the diagnostic record from a previous update.
func (p *Particle) clearAssociations() {
	p.Associations = nil
	p.SenseX = nil
	p.SenseY = nil
}

// clone returns a copy of the particle with its own diagnostic slices, safe
// to hand to callers or to the next generation without aliasing.
func (p Particle) clone() Particle {
	out := p
	if len(p.Associations) > 0 {
		out.Associations = make([]int, len(p.Associations))
		copy(out.Associations, p.Associations)
	}
	if len(p.SenseX) > 0 {
		out.SenseX = make([]float64, len(p.SenseX))
		copy(out.SenseX, p.SenseX)
	}
	if len(p.SenseY) > 0 {
		out.SenseY = make([]float64, len(p.SenseY))
		copy(out.SenseY, p.SenseY)
	}
	return out
}

// AssociationsString renders the matched landmark IDs from the most recent
// update as a space-separated string with no trailing separator.
func (p Particle) AssociationsString() string {
	parts := make([]string, len(p.Associations))
	for i, id := range p.Associations {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// SenseXString renders the sensed map-frame X coordinates from the most
// recent update as a space-separated string with no trailing separator.
func (p Particle) SenseXString() string {
	return joinFloats(p.SenseX)
}

// SenseYString renders the sensed map-frame Y coordinates from the most
// recent update as a space-separated string with no trailing separator.
func (p Particle) SenseYString() string {
	return joinFloats(p.SenseY)
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
