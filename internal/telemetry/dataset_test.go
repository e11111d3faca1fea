package telemetry

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pose.report/internal/geo"
	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReadMap(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map_data.txt")
	writeFile(t, path, "92.064\t-34.777\t1\n61.109\t-47.132\t2\n\n17.42 59.359 3\n")

	m, err := ReadMap(path)
	require.NoError(t, err)

	want := mcl.Map{Landmarks: []mcl.Landmark{
		{ID: 1, X: 92.064, Y: -34.777},
		{ID: 2, X: 61.109, Y: -47.132},
		{ID: 3, X: 17.42, Y: 59.359},
	}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("map mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMapRejectsMalformedLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "map_data.txt")
	writeFile(t, path, "1.0 2.0\n")

	_, err := ReadMap(path)
	assert.ErrorContains(t, err, "expected 3 fields")
}

func TestReadControlsAndGroundTruth(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "control_data.txt"), "5.0 0.01\n4.9 -0.02\n")
	writeFile(t, filepath.Join(dir, "gt_data.txt"), "6.27 1.96 0.0\n6.77 1.97 0.01\n")

	controls, err := ReadControls(filepath.Join(dir, "control_data.txt"))
	require.NoError(t, err)
	require.Len(t, controls, 2)
	assert.Equal(t, Control{Velocity: 5.0, YawRate: 0.01}, controls[0])

	gt, err := ReadGroundTruth(filepath.Join(dir, "gt_data.txt"))
	require.NoError(t, err)
	require.Len(t, gt, 2)
	assert.Equal(t, mcl.Pose{X: 6.77, Y: 1.97, Theta: 0.01}, gt[1])
}

func TestReadObservationsOrdersByFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	obsDir := filepath.Join(dir, ObservationDir)
	require.NoError(t, os.MkdirAll(obsDir, 0755))
	writeFile(t, filepath.Join(obsDir, "observations_000002.txt"), "3 4\n")
	writeFile(t, filepath.Join(obsDir, "observations_000001.txt"), "1 2\n5 6\n")
	writeFile(t, filepath.Join(obsDir, "ignored.dat"), "junk\n")

	obs, err := ReadObservations(obsDir)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, []mcl.Observation{{X: 1, Y: 2}, {X: 5, Y: 6}}, obs[0])
	assert.Equal(t, []mcl.Observation{{X: 3, Y: 4}}, obs[1])
}

func TestWriteLoadRoundTrip(t *testing.T) {
	t.Parallel()

	src := rand.NewPCG(7, 7)
	gen, err := Generate(SyntheticConfig{
		Steps:        5,
		DeltaT:       0.1,
		Velocity:     5,
		YawRate:      0.1,
		SensorRange:  50,
		NumLandmarks: 20,
		FieldSize:    100,
		Start:        mcl.Pose{X: 0, Y: 0, Theta: 0},
	}, src)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Write(dir, gen))

	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, gen.Steps(), loaded.Steps())
	require.Len(t, loaded.Map.Landmarks, 20)
	require.Len(t, loaded.GroundTruth, 5)

	for i := range gen.GroundTruth {
		assert.InDelta(t, gen.GroundTruth[i].X, loaded.GroundTruth[i].X, 1e-12)
		assert.InDelta(t, gen.GroundTruth[i].Y, loaded.GroundTruth[i].Y, 1e-12)
		assert.InDelta(t, gen.GroundTruth[i].Theta, loaded.GroundTruth[i].Theta, 1e-12)
	}
	for i := range gen.Observations {
		require.Len(t, loaded.Observations[i], len(gen.Observations[i]))
	}
}

func TestGenerateObservationsMatchLandmarks(t *testing.T) {
	t.Parallel()

	// Noise-free generation: every observation, transformed back into the
	// map frame under the ground-truth pose, must land exactly on some
	// landmark within sensor range.
	ds, err := Generate(SyntheticConfig{
		Steps:        10,
		DeltaT:       0.1,
		Velocity:     3,
		YawRate:      0.2,
		SensorRange:  40,
		NumLandmarks: 15,
		FieldSize:    80,
	}, rand.NewPCG(8, 8))
	require.NoError(t, err)

	for step, obs := range ds.Observations {
		gt := ds.GroundTruth[step]
		for _, o := range obs {
			mx, my := geo.VehicleToMap(gt.X, gt.Y, gt.Theta, o.X, o.Y)
			closest := math.MaxFloat64
			for _, lm := range ds.Map.Landmarks {
				if d := geo.Dist(mx, my, lm.X, lm.Y); d < closest {
					closest = d
				}
			}
			assert.InDelta(t, 0.0, closest, 1e-9)
		}
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := Generate(SyntheticConfig{Steps: 0, DeltaT: 0.1}, rand.NewPCG(1, 1))
	assert.Error(t, err)
	_, err = Generate(SyntheticConfig{Steps: 1, DeltaT: 0}, rand.NewPCG(1, 1))
	assert.Error(t, err)
}
