package driving

import (
	"context"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// FormService opens form sessions from the registered schemas.
type FormService interface {
	// Forms returns every registered schema, sorted by name.
	Forms() []domain.Schema

	// Schema returns a schema by name.
	// Returns domain.ErrUnknownForm when none matches.
	Schema(name string) (*domain.Schema, error)

	// Open starts a session. initial seeds the state for edit mode and
	// recordID selects update instead of create on submit.
	Open(name string, initial map[string]any, recordID string) (FormHandle, error)

	// Normalize produces the wire payload for a state without a session.
	Normalize(name string, state *domain.FormState) (domain.Payload, error)
}

// FormHandle is the controller object a host holds for one form session.
type FormHandle interface {
	// Schema returns the form definition.
	Schema() *domain.Schema

	// State returns a copy of the current state.
	State() *domain.FormState

	// Set updates a text, number, date or identifier field.
	Set(field, value string) error

	// SetFlag updates a checkbox field.
	SetFlag(field string, value bool) error

	// SetRowValue updates a column of the addressed row.
	SetRowValue(path domain.RowPath, field, value string) error

	// AddRow appends an empty row to a list under parent and returns its path.
	AddRow(parent domain.RowPath, list string) (domain.RowPath, error)

	// RemoveRow removes the addressed row, keeping placeholder rows where required.
	RemoveRow(path domain.RowPath) error

	// SetText updates an entry of a scalar list.
	SetText(list string, index int, value string) error

	// AddText appends an empty entry to a scalar list and returns its index.
	AddText(list string) (int, error)

	// RemoveText removes an entry of a scalar list.
	RemoveText(list string, index int) error

	// Snapshot returns the normalised payload of the current state.
	Snapshot() domain.Payload

	// Validate returns a *domain.ValidationError when the state cannot be submitted.
	Validate() error

	// CanSubmit reports whether every required field holds a value.
	CanSubmit() bool

	// Status returns the submission state.
	Status() domain.SubmissionStatus

	// RecordID returns the record being edited, empty for a new record.
	RecordID() string

	// LookupEmployee fills dependent fields from the employee number.
	// The same trimmed value is never looked up twice in a row.
	LookupEmployee(ctx context.Context) (*domain.Notice, error)

	// Submit creates or updates the record.
	Submit(ctx context.Context) (*domain.SubmissionResult, error)

	// OnChange registers a callback run after every state change.
	OnChange(fn func())
}
