package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Defaults are set via pointers
	if cfg.NumParticles == nil || *cfg.NumParticles != 100 {
		t.Errorf("Expected NumParticles 100, got %v", cfg.NumParticles)
	}
	if cfg.SensorRangeM == nil || *cfg.SensorRangeM != 50.0 {
		t.Errorf("Expected SensorRangeM 50.0, got %v", cfg.SensorRangeM)
	}
	if cfg.DeltaTSeconds == nil || *cfg.DeltaTSeconds != 0.1 {
		t.Errorf("Expected DeltaTSeconds 0.1, got %v", cfg.DeltaTSeconds)
	}

	// Getter methods
	if cfg.GetNumParticles() != 100 {
		t.Errorf("GetNumParticles() = %d, want 100", cfg.GetNumParticles())
	}
	if cfg.GetSeed() != 42 {
		t.Errorf("GetSeed() = %d, want 42", cfg.GetSeed())
	}
	if got := cfg.GetGPSStd(); got != [3]float64{0.3, 0.3, 0.01} {
		t.Errorf("GetGPSStd() = %v, want [0.3 0.3 0.01]", got)
	}
	if got := cfg.GetLandmarkStd(); got != [2]float64{0.3, 0.3} {
		t.Errorf("GetLandmarkStd() = %v, want [0.3 0.3]", got)
	}
}

func TestGettersFallBackToDefaultsOnEmptyConfig(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetNumParticles() != 100 {
		t.Errorf("GetNumParticles() = %d, want 100", cfg.GetNumParticles())
	}
	if cfg.GetUpdateParallelism() != 1 {
		t.Errorf("GetUpdateParallelism() = %d, want 1", cfg.GetUpdateParallelism())
	}
	if cfg.GetRecordAssociations() != false {
		t.Errorf("GetRecordAssociations() = %v, want false", cfg.GetRecordAssociations())
	}
	if cfg.GetSensorRangeM() != 50.0 {
		t.Errorf("GetSensorRangeM() = %f, want 50.0", cfg.GetSensorRangeM())
	}
	if got := cfg.GetProcessStd(); got != [3]float64{0.3, 0.3, 0.01} {
		t.Errorf("GetProcessStd() = %v, want [0.3 0.3 0.01]", got)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	// Partial config: omitted fields must fall back to defaults.
	testJSON := `{
  "num_particles": 500,
  "sensor_range_m": 75.0,
  "gps_std_theta": 0.05
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetNumParticles() != 500 {
		t.Errorf("GetNumParticles() = %d, want 500", cfg.GetNumParticles())
	}
	if cfg.GetSensorRangeM() != 75.0 {
		t.Errorf("GetSensorRangeM() = %f, want 75.0", cfg.GetSensorRangeM())
	}
	if got := cfg.GetGPSStd(); got != [3]float64{0.3, 0.3, 0.05} {
		t.Errorf("GetGPSStd() = %v, want [0.3 0.3 0.05]", got)
	}
	if cfg.GetDeltaTSeconds() != 0.1 {
		t.Errorf("GetDeltaTSeconds() = %f, want default 0.1", cfg.GetDeltaTSeconds())
	}
}

func TestLoadTuningConfigRejectsNonJSONExtension(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Fatal("expected error for non-json extension, got nil")
	}
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		json string
		want string
	}{
		{"zero particles", `{"num_particles": 0}`, "num_particles"},
		{"negative particles", `{"num_particles": -5}`, "num_particles"},
		{"zero sensor range", `{"sensor_range_m": 0}`, "sensor_range_m"},
		{"negative gps std", `{"gps_std_x": -0.1}`, "gps_std_x"},
		{"zero landmark std", `{"landmark_std_x": 0}`, "landmark_std_x"},
		{"zero delta t", `{"delta_t_seconds": 0}`, "delta_t_seconds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(configPath, []byte(tc.json), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			_, err := LoadTuningConfig(configPath)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetNumParticles() <= 0 {
		t.Errorf("defaults file has invalid num_particles %d", cfg.GetNumParticles())
	}
	if cfg.GetSensorRangeM() <= 0 {
		t.Errorf("defaults file has invalid sensor_range_m %f", cfg.GetSensorRangeM())
	}
}
