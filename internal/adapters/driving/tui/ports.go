// Package tui provides an interactive terminal user interface for filling
// in and submitting forms. It implements a driving adapter following
// hexagonal architecture principles.
package tui

import (
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Forms opens form sessions.
	Forms driving.FormService

	// Suggestions provides typeahead for free-text fields.
	Suggestions driving.SuggestionService

	// Records lists and deletes stored records.
	Records driving.RecordService

	// Dropdowns provides cached option lists.
	Dropdowns driving.DropdownService

	// Settings manages application settings.
	Settings driving.SettingsService

	// Session describes the signed-in user.
	Session driving.SessionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Forms == nil {
		return ErrMissingFormService
	}
	return nil
}
