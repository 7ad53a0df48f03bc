package driving

import (
	"context"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// RecordService manages stored records of a form.
type RecordService interface {
	// List returns records of a form.
	List(ctx context.Context, form string, opts domain.ListOptions) ([]domain.Record, error)

	// Get returns a single record.
	Get(ctx context.Context, form, id string) (*domain.Record, error)

	// Delete removes a record.
	Delete(ctx context.Context, form, id string) error
}
