// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewForms lists the available forms.
	ViewForms
	// ViewForm is the form editor.
	ViewForm
	// ViewRecords lists stored records of a form.
	ViewRecords
	// ViewSettings is the settings editor.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewForms:
		return "forms"
	case ViewForm:
		return "form"
	case ViewRecords:
		return "records"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// FormSelected asks for a new, empty session of a form.
type FormSelected struct {
	Form string
}

// FormOpened carries an opened form session to the editor.
type FormOpened struct {
	Handle driving.FormHandle
	Err    error
}

// RecordsRequested asks for the records of a form.
type RecordsRequested struct {
	Form string
}

// RecordsLoaded carries a page of records.
type RecordsLoaded struct {
	Form    string
	Records []domain.Record
	Err     error
}

// RecordSelected asks to edit a stored record.
type RecordSelected struct {
	Form   string
	Record domain.Record
}

// RecordDeleted signals a record was deleted.
type RecordDeleted struct {
	ID  string
	Err error
}

// SuggestionsChanged carries a resolver snapshot for a field.
// Closed is set once the resolver's change channel is drained.
type SuggestionsChanged struct {
	Field  string
	State  domain.SuggestionState
	Closed bool
}

// OptionsLoaded carries the dropdown options of a field.
type OptionsLoaded struct {
	Field   string
	Options []string
	Err     error
}

// LookupCompleted carries the result of an employee lookup.
type LookupCompleted struct {
	Notice *domain.Notice
	Err    error
}

// SubmitCompleted carries the result of a submission.
type SubmitCompleted struct {
	Result *domain.SubmissionResult
	Err    error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals a setting was stored.
type SettingsSaved struct {
	Key string
	Err error
}
