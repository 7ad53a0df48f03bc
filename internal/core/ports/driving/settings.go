package driving

import "github.com/Tabrezhira/sobha-his-forms/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, env overrides applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by key after validating the result.
	Set(key, value string) error

	// Validate checks a settings value.
	Validate(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
