package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/runlog"
	"github.com/banshee-data/pose.report/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFilter implements FilterState with canned data.
type fakeFilter struct {
	initialized bool
	pose        mcl.Pose
	poseErr     error
	particles   []mcl.Particle
}

func (f *fakeFilter) Initialized() bool           { return f.initialized }
func (f *fakeFilter) Estimate() (mcl.Pose, error) { return f.pose, f.poseErr }
func (f *fakeFilter) Particles() []mcl.Particle   { return f.particles }

func TestShowPose(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{
		initialized: true,
		pose:        mcl.Pose{X: 1.5, Y: -2.5, Theta: 0.75},
	}, nil, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/pose"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got PoseAPI
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, PoseAPI{X: 1.5, Y: -2.5, Theta: 0.75}, got)
}

func TestShowPoseBeforeInit(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{poseErr: mcl.ErrNotInitialized}, nil, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/pose"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
}

func TestShowPoseRejectsPost(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{initialized: true}, nil, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/pose"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestListParticles(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{
		initialized: true,
		particles: []mcl.Particle{
			{ID: 1, X: 0.5, Weight: 0.6},
			{ID: 2, Y: 1.5, Weight: 0.4},
		},
	}, nil, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/particles"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got []ParticleAPI
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, ParticleAPI{ID: 1, X: 0.5, Weight: 0.6}, got[0])
}

func TestListParticlesBeforeInit(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{}, nil, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/particles"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	db, err := runlog.NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.StartRun("data/run1", 100, 7)
	require.NoError(t, err)

	s := NewServer(&fakeFilter{initialized: true}, db, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/runs"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got []runlog.Run
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "data/run1", got[0].Dataset)
}

func TestListRunsDisabled(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{}, nil, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/runs"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestListRunsInvalidLimit(t *testing.T) {
	t.Parallel()

	db, err := runlog.NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewServer(&fakeFilter{}, db, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/runs?limit=bogus"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestShowParticleChart(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{
		initialized: true,
		particles:   []mcl.Particle{{ID: 1, X: 1, Y: 2, Weight: 0.5}},
	}, nil, []mcl.Landmark{{ID: 1, X: 5, Y: 5}})

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/particles"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestShowParticleChartBeforeInit(t *testing.T) {
	t.Parallel()

	s := NewServer(&fakeFilter{}, nil, nil)

	rec := testutil.NewTestRecorder()
	s.ServeMux().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/particles"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
}
