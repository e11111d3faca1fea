// Package runlog persists localization runs to sqlite so repeated runs over
// the same dataset can be compared after the fact.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pose.report/internal/mcl"
	"github.com/banshee-data/pose.report/internal/metrics"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			dataset TEXT,
			num_particles INTEGER,
			seed INTEGER,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT,
			step INTEGER,
			est_x DOUBLE, est_y DOUBLE, est_theta DOUBLE,
			gt_x DOUBLE, gt_y DOUBLE, gt_theta DOUBLE,
			err_x DOUBLE, err_y DOUBLE, err_yaw DOUBLE,
			PRIMARY KEY (run_id, step),
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// StartRun inserts a run row and returns its generated id.
func (db *DB) StartRun(dataset string, numParticles int, seed uint64) (string, error) {
	id := uuid.New().String()
	_, err := db.Exec(
		"INSERT INTO runs (run_id, dataset, num_particles, seed) VALUES (?, ?, ?, ?)",
		id, dataset, numParticles, int64(seed),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordStep stores the estimate, ground truth and error for one timestep.
func (db *DB) RecordStep(runID string, est, gt mcl.Pose, stepErr metrics.StepError) error {
	_, err := db.Exec(`
		INSERT INTO steps (run_id, step, est_x, est_y, est_theta, gt_x, gt_y, gt_theta, err_x, err_y, err_yaw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, stepErr.Step,
		est.X, est.Y, est.Theta,
		gt.X, gt.Y, gt.Theta,
		stepErr.X, stepErr.Y, stepErr.Yaw,
	)
	return err
}

// Run is one row of the runs table.
type Run struct {
	ID           string
	Dataset      string
	NumParticles int
	Seed         int64
	StartedAt    time.Time
}

func (r *Run) String() string {
	return fmt.Sprintf("Run %s dataset=%s particles=%d seed=%d", r.ID, r.Dataset, r.NumParticles, r.Seed)
}

// Runs returns the most recent runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	rows, err := db.Query(
		"SELECT run_id, dataset, num_particles, seed, started_at FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Dataset, &r.NumParticles, &r.Seed, &r.StartedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// StepErrors returns the per-step errors for a run in step order.
func (db *DB) StepErrors(runID string) ([]metrics.StepError, error) {
	rows, err := db.Query(
		"SELECT step, err_x, err_y, err_yaw FROM steps WHERE run_id = ? ORDER BY step",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []metrics.StepError
	for rows.Next() {
		var s metrics.StepError
		if err := rows.Scan(&s.Step, &s.X, &s.Y, &s.Yaw); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return steps, nil
}
