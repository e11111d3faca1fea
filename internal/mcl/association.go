package mcl

import (
	"math"

	"github.com/banshee-data/pose.report/internal/geo"
)

// AssociateNearest matches each map-frame observation to its nearest
// candidate landmark by Euclidean distance, returning one landmark per
// observation in input order. Ties are broken in favour of the landmark with
// the smaller index in the candidate sequence.
//
// The matcher performs no sensor-range filtering; callers restrict the
// candidate set beforehand and must guarantee it is non-empty.
func AssociateNearest(candidates []Landmark, observations []Observation) ([]Landmark, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	matched := make([]Landmark, len(observations))
	for i, obs := range observations {
		bestIdx := 0
		bestDist := math.MaxFloat64
		for j := range candidates {
			d := geo.Dist(candidates[j].X, candidates[j].Y, obs.X, obs.Y)
			if d < bestDist {
				bestDist = d
				bestIdx = j
			}
		}
		matched[i] = candidates[bestIdx]
	}
	return matched, nil
}
