package driving

import "context"

// DropdownService provides cached option lists.
type DropdownService interface {
	// Options returns the options of a category, reading through the cache.
	Options(ctx context.Context, category string) ([]string, error)

	// Refresh drops the cached options of a category.
	Refresh(ctx context.Context, category string) error
}
