package driving

import "github.com/oceandata/ingest/internal/core/domain"

// SettingsService turns the configuration file into explicit settings.
type SettingsService interface {
	// Get returns the effective settings: stored values over defaults.
	Get() (domain.Settings, error)

	// Set parses and persists a single configuration value.
	Set(key, value string) error

	// Validate checks the effective settings can drive a pipeline.
	Validate() error
}
