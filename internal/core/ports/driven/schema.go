package driven

import "github.com/Tabrezhira/sobha-his-forms/internal/core/domain"

// SchemaSource loads form definition tables.
type SchemaSource interface {
	// Load returns every schema the source knows about.
	Load() ([]domain.Schema, error)
}
