package mcl

import "github.com/banshee-data/pose.report/internal/config"

// DefaultFilterConfig returns filter configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json). Panics if the file
// cannot be found — intended for tests and binaries that have already
// validated config availability.
func DefaultFilterConfig() FilterConfig {
	cfg := config.MustLoadDefaultConfig()
	return FilterConfigFromTuning(cfg)
}

// FilterConfigFromTuning builds a FilterConfig from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func FilterConfigFromTuning(cfg *config.TuningConfig) FilterConfig {
	return FilterConfig{
		NumParticles:       cfg.GetNumParticles(),
		UpdateParallelism:  cfg.GetUpdateParallelism(),
		RecordAssociations: cfg.GetRecordAssociations(),
	}
}
