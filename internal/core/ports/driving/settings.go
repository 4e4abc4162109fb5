package driving

import "github.com/custodia-labs/pacer/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set updates one setting by its dotted key after validating the result.
	Set(key, value string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
