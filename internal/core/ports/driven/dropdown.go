package driven

import (
	"context"
	"time"
)

// DropdownSource fetches the option list of a dropdown category.
type DropdownSource interface {
	// Options returns every option of the category.
	Options(ctx context.Context, category string) ([]string, error)
}

// DropdownCache stores option lists between fetches.
type DropdownCache interface {
	// Get returns the cached options and whether they were present and fresh.
	Get(ctx context.Context, category string) ([]string, bool, error)

	// Set stores options for ttl. A zero ttl never expires.
	Set(ctx context.Context, category string, options []string, ttl time.Duration) error

	// Invalidate drops one category, or every category when empty.
	Invalidate(ctx context.Context, category string) error

	// Close releases resources.
	Close() error
}
