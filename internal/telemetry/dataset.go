// Package telemetry loads and generates the recorded inputs the localizer
// runs against: the landmark map, per-timestep control inputs, vehicle-frame
// landmark observations, and optional ground-truth poses.
//
// File formats are plain whitespace-separated text, one record per line:
//
//	map_data.txt                      x y id
//	control_data.txt                  velocity yawrate
//	gt_data.txt                       x y theta
//	observation/observations_NNNNNN.txt   x y       (one file per timestep)
package telemetry

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/pose.report/internal/mcl"
)

// Default file layout inside a dataset directory.
const (
	MapFile         = "map_data.txt"
	ControlFile     = "control_data.txt"
	GroundTruthFile = "gt_data.txt"
	ObservationDir  = "observation"
)

// Control is one timestep of motion input.
type Control struct {
	Velocity float64 // m/s
	YawRate  float64 // rad/s
}

/// Dataset is a fully loaded run: the map, per-timestep controls and
// observations, and (for evaluation) ground-truth poses. Controls,
// Observations and GroundTruth are parallel by timestep index.
type Dataset struct {
	Map          mcl.Map
	Controls     []Control
	Observations [][]mcl.Observation
	GroundTruth  []mcl.Pose
}

/// Steps returns the number of usable timesteps: the controls all have to be
// paired with an observation list.
func (d *Dataset) Steps() int {
	n := len(d.Controls)
	if len(d.Observations) < n {
		n = len(d.Observations)
	}
	return n
}

// Load reads a complete dataset from dir. Ground truth is optional; a
// missing gt_data.txt leaves GroundTruth nil.
func Load(dir string) (*Dataset, error) {
	m, err := ReadMap(filepath.Join(dir, MapFile))
	if err != nil {
		return nil, err
	}
	controls, err := ReadControls(filepath.Join(dir, ControlFile))
	if err != nil {
		return nil, err
	}
	observations, err := ReadObservations(filepath.Join(dir, ObservationDir))
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Map: m, Controls: controls, Observations: observations}

	gtPath := filepath.Join(dir, GroundTruthFile)
	if _, err := os.Stat(gtPath); err == nil {
		gt, err := ReadGroundTruth(gtPath)
		if err != nil {
			return nil, err
		}
		ds.GroundTruth = gt
	}
	return ds, nil
}

// ReadMap parses a landmark map file ("x y id" per line).
func ReadMap(path string) (mcl.Map, error) {
	var m mcl.Map
	err := scanLines(path, 3, func(lineNum int, fields []string) error {
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("landmark x: %w", err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("landmark y: %w", err)
		}
		id, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("landmark id: %w", err)
		}
		m.Landmarks = append(m.Landmarks, mcl.Landmark{ID: id, X: x, Y: y})
		return nil
	})
	if err != nil {
		return mcl.Map{}, err
	}
	return m, nil
}

// ReadControls parses a control input file ("velocity yawrate" per line).
func ReadControls(path string) ([]Control, error) {
	var controls []Control
	err := scanLines(path, 2, func(lineNum int, fields []string) error {
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("velocity: %w", err)
		}
		w, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("yawrate: %w", err)
		}
		controls = append(controls, Control{Velocity: v, YawRate: w})
		return nil
	})
	return controls, err
}

// ReadGroundTruth parses a ground-truth pose file ("x y theta" per line).
func ReadGroundTruth(path string) ([]mcl.Pose, error) {
	var poses []mcl.Pose
	err := scanLines(path, 3, func(lineNum int, fields []string) error {
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("gt x: %w", err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("gt y: %w", err)
		}
		theta, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("gt theta: %w", err)
		}
		poses = append(poses, mcl.Pose{X: x, Y: y, Theta: theta})
		return nil
	})
	return poses, err
}

// ReadObservationFile parses a single per-timestep observation file
// ("x y" per line, vehicle frame).
func ReadObservationFile(path string) ([]mcl.Observation, error) {
	var obs []mcl.Observation
	err := scanLines(path, 2, func(lineNum int, fields []string) error {
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return fmt.Errorf("observation x: %w", err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("observation y: %w", err)
		}
		obs = append(obs, mcl.Observation{X: x, Y: y})
		return nil
	})
	return obs, err
}

// ReadObservations loads every observations_*.txt file in dir, ordered by
// filename, one observation list per timestep. An empty file is a valid
// timestep with zero detections.
func ReadObservations(dir string) ([][]mcl.Observation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read observation dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "observations_") && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([][]mcl.Observation, 0, len(names))
	for _, name := range names {
		obs, err := ReadObservationFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

// scanLines reads path line by line, splits each non-blank line into
// whitespace-separated fields, checks the field count and hands the fields
// to fn. Errors are wrapped with the path and line number.
func scanLines(path string, wantFields int, fn func(lineNum int, fields []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != wantFields {
			return fmt.Errorf("%s:%d: expected %d fields, got %d", path, lineNum, wantFields, len(fields))
		}
		if err := fn(lineNum, fields); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
