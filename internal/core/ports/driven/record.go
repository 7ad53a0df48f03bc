package driven

import (
	"context"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// RecordStore provides CRUD over a primary record collection.
// The resource is the collection path declared by the form schema.
type RecordStore interface {
	// Create posts a new record.
	Create(ctx context.Context, resource string, payload domain.Payload) (*domain.Record, error)

	// Update replaces the record with the given ID.
	Update(ctx context.Context, resource, id string, payload domain.Payload) (*domain.Record, error)

	// Get fetches a single record.
	// Returns domain.ErrNotFound when the record does not exist.
	Get(ctx context.Context, resource, id string) (*domain.Record, error)

	// List fetches records of a collection.
	List(ctx context.Context, resource string, opts domain.ListOptions) ([]domain.Record, error)

	// Delete removes a record.
	Delete(ctx context.Context, resource, id string) error
}
