package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for localization tuning
// parameters. Fields are pointers so that partial JSON configs are safe:
// omitted fields fall back to the compiled-in defaults in the Get* methods.
type TuningConfig struct {
	// Filter params
	NumParticles       *int    `json:"num_particles,omitempty"`
	Seed               *uint64 `json:"seed,omitempty"`
	UpdateParallelism  *int    `json:"update_parallelism,omitempty"`
	RecordAssociations *bool   `json:"record_associations,omitempty"`

	// Sensor params
	SensorRangeM  *float64 `json:"sensor_range_m,omitempty"`
	LandmarkStdX  *float64 `json:"landmark_std_x,omitempty"`
	LandmarkStdY  *float64 `json:"landmark_std_y,omitempty"`
	DeltaTSeconds *float64 `json:"delta_t_seconds,omitempty"`

	// GPS prior params (initialization spread)
	GPSStdX     *float64 `json:"gps_std_x,omitempty"`
	GPSStdY     *float64 `json:"gps_std_y,omitempty"`
	GPSStdTheta *float64 `json:"gps_std_theta,omitempty"`

	// Motion model process noise
	ProcessStdX     *float64 `json:"process_std_x,omitempty"`
	ProcessStdY     *float64 `json:"process_std_y,omitempty"`
	ProcessStdTheta *float64 `json:"process_std_theta,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }
func ptrUint64(v uint64) *uint64    { return &v }

// DefaultTuningConfig returns a TuningConfig with every field populated with
// its compiled-in default. Useful for serializing a complete defaults file.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		NumParticles:       ptrInt(100),
		Seed:               ptrUint64(42),
		UpdateParallelism:  ptrInt(1),
		RecordAssociations: ptrBool(false),
		SensorRangeM:       ptrFloat64(50.0),
		LandmarkStdX:       ptrFloat64(0.3),
		LandmarkStdY:       ptrFloat64(0.3),
		DeltaTSeconds:      ptrFloat64(0.1),
		GPSStdX:            ptrFloat64(0.3),
		GPSStdY:            ptrFloat64(0.3),
		GPSStdTheta:        ptrFloat64(0.01),
		ProcessStdX:        ptrFloat64(0.3),
		ProcessStdY:        ptrFloat64(0.3),
		ProcessStdTheta:    ptrFloat64(0.01),
	}
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.NumParticles != nil && *c.NumParticles <= 0 {
		return fmt.Errorf("num_particles must be positive, got %d", *c.NumParticles)
	}
	if c.UpdateParallelism != nil && *c.UpdateParallelism < 0 {
		return fmt.Errorf("update_parallelism must be non-negative, got %d", *c.UpdateParallelism)
	}
	if c.SensorRangeM != nil && *c.SensorRangeM <= 0 {
		return fmt.Errorf("sensor_range_m must be positive, got %f", *c.SensorRangeM)
	}
	if c.DeltaTSeconds != nil && *c.DeltaTSeconds <= 0 {
		return fmt.Errorf("delta_t_seconds must be positive, got %f", *c.DeltaTSeconds)
	}
	for name, v := range map[string]*float64{
		"landmark_std_x":    c.LandmarkStdX,
		"landmark_std_y":    c.LandmarkStdY,
		"gps_std_x":         c.GPSStdX,
		"gps_std_y":         c.GPSStdY,
		"gps_std_theta":     c.GPSStdTheta,
		"process_std_x":     c.ProcessStdX,
		"process_std_y":     c.ProcessStdY,
		"process_std_theta": c.ProcessStdTheta,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}
	// The sensor model divides by the landmark sigmas.
	if c.LandmarkStdX != nil && *c.LandmarkStdX == 0 {
		return fmt.Errorf("landmark_std_x must be positive, got 0")
	}
	if c.LandmarkStdY != nil && *c.LandmarkStdY == 0 {
		return fmt.Errorf("landmark_std_y must be positive, got 0")
	}
	return nil
}

// GetNumParticles returns the num_particles value or the default.
func (c *TuningConfig) GetNumParticles() int {
	if c.NumParticles == nil {
		return 100
	}
	return *c.NumParticles
}

// GetSeed returns the seed value or the default.
func (c *TuningConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 42
	}
	return *c.Seed
}

// GetUpdateParallelism returns the update_parallelism value or the default.
func (c *TuningConfig) GetUpdateParallelism() int {
	if c.UpdateParallelism == nil {
		return 1
	}
	return *c.UpdateParallelism
}

// GetRecordAssociations returns the record_associations value or the default.
func (c *TuningConfig) GetRecordAssociations() bool {
	if c.RecordAssociations == nil {
		return false
	}
	return *c.RecordAssociations
}

// GetSensorRangeM returns the sensor_range_m value or the default.
func (c *TuningConfig) GetSensorRangeM() float64 {
	if c.SensorRangeM == nil {
		return 50.0
	}
	return *c.SensorRangeM
}

// GetLandmarkStdX returns the landmark_std_x value or the default.
func (c *TuningConfig) GetLandmarkStdX() float64 {
	if c.LandmarkStdX == nil {
		return 0.3
	}
	return *c.LandmarkStdX
}

// GetLandmarkStdY returns the landmark_std_y value or the default.
func (c *TuningConfig) GetLandmarkStdY() float64 {
	if c.LandmarkStdY == nil {
		return 0.3
	}
	return *c.LandmarkStdY
}

// GetDeltaTSeconds returns the delta_t_seconds value or the default.
func (c *TuningConfig) GetDeltaTSeconds() float64 {
	if c.DeltaTSeconds == nil {
		return 0.1
	}
	return *c.DeltaTSeconds
}

// GetGPSStd returns the GPS prior standard deviations as an (x, y, theta)
// triple.
func (c *TuningConfig) GetGPSStd() [3]float64 {
	out := [3]float64{0.3, 0.3, 0.01}
	if c.GPSStdX != nil {
		out[0] = *c.GPSStdX
	}
	if c.GPSStdY != nil {
		out[1] = *c.GPSStdY
	}
	if c.GPSStdTheta != nil {
		out[2] = *c.GPSStdTheta
	}
	return out
}

// GetProcessStd returns the process noise standard deviations as an
// (x, y, theta) triple.
func (c *TuningConfig) GetProcessStd() [3]float64 {
	out := [3]float64{0.3, 0.3, 0.01}
	if c.ProcessStdX != nil {
		out[0] = *c.ProcessStdX
	}
	if c.ProcessStdY != nil {
		out[1] = *c.ProcessStdY
	}
	if c.ProcessStdTheta != nil {
		out[2] = *c.ProcessStdTheta
	}
	return out
}

// GetLandmarkStd returns the measurement noise standard deviations as an
// (x, y) pair.
func (c *TuningConfig) GetLandmarkStd() [2]float64 {
	return [2]float64{c.GetLandmarkStdX(), c.GetLandmarkStdY()}
}
