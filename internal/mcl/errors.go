package mcl

import "errors"

var (
	// ErrNotInitialized is returned when Predict, UpdateWeights or Resample
	// is called before Init.
	ErrNotInitialized = errors.New("mcl: filter not initialized")

	// ErrNoCandidates is returned by AssociateNearest when the candidate
	// landmark set is empty. Callers must range-filter against a non-empty
	// map before associating.
	ErrNoCandidates = errors.New("mcl: empty landmark candidate set")

	// ErrEmptyMap is returned by UpdateWeights when observations are present
	// but the map contains no landmarks at all. A particle merely having no
	// landmarks within sensor range is not an error; its weight drops to
	// zero instead.
	ErrEmptyMap = errors.New("mcl: map contains no landmarks")

	// ErrNoParticles is returned by accessors when the filter holds no
	// particles.
	ErrNoParticles = errors.New("mcl: filter holds no particles")
)
