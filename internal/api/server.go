package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/runlog"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// FilterState is the read-only view of the filter the server exposes.
// *mcl.ParticleFilter satisfies it.
type FilterState interface {
	Initialized() bool
	Estimate() (mcl.Pose, error)
	Particles() []mcl.Particle
}

type Server struct {
	pf        FilterState
	db        *runlog.DB
	landmarks []mcl.Landmark
}

// NewServer creates an HTTP server over a running filter. db may be nil when
// run logging is disabled.
func NewServer(pf FilterState, db *runlog.DB, landmarks []mcl.Landmark) *Server {
	return &Server{
		pf:        pf,
		db:        db,
		landmarks: landmarks,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pose", s.showPose)
	mux.HandleFunc("/api/particles", s.listParticles)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/debug/particles", s.showParticleChart)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// PoseAPI is the wire shape of the current estimate.
type PoseAPI struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

func (s *Server) showPose(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	pose, err := s.pf.Estimate()
	if err != nil {
		s.writeJSONError(w, http.StatusServiceUnavailable,
			fmt.Sprintf("Filter not ready: %v", err))
		return
	}

	if err := json.NewEncoder(w).Encode(PoseAPI{X: pose.X, Y: pose.Y, Theta: pose.Theta}); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write pose")
		return
	}
}

// ParticleAPI is the wire shape of one particle. Diagnostic association
// slices are left off; /debug/particles visualises the full cloud instead.
type ParticleAPI struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Theta  float64 `json:"theta"`
	Weight float64 `json:"weight"`
}

func (s *Server) listParticles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if !s.pf.Initialized() {
		s.writeJSONError(w, http.StatusServiceUnavailable, "Filter not initialized")
		return
	}

	particles := s.pf.Particles()
	apiParticles := make([]ParticleAPI, len(particles))
	for i, p := range particles {
		apiParticles[i] = ParticleAPI{ID: p.ID, X: p.X, Y: p.Y, Theta: p.Theta, Weight: p.Weight}
	}

	if err := json.NewEncoder(w).Encode(apiParticles); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write particles")
		return
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.db == nil {
		s.writeJSONError(w, http.StatusNotFound, "Run logging disabled")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.Runs(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}

	if err := json.NewEncoder(w).Encode(runs); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write runs")
		return
	}
}
