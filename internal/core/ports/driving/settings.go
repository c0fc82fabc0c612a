package driving

import "github.com/custodia-labs/sercha-ingest/internal/core/domain"

// SettingsService resolves the process configuration.
type SettingsService interface {
	// Get builds validated settings from defaults, the config file and
	// environment overrides, in that order.
	Get() (domain.Settings, error)

	// Set parses and persists a single key. The resulting settings must
	// still validate.
	Set(key, value string) error

	// Keys returns every recognised configuration key.
	Keys() []string

	// Path returns the configuration file path.
	Path() string
}
