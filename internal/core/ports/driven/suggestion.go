package driven

import "context"

// SuggestionSource queries the remote category-scoped search endpoint.
type SuggestionSource interface {
	// Suggest returns candidate names for the query, at most limit entries.
	// Implementations must honour ctx cancellation and return an error
	// satisfying errors.Is(err, context.Canceled) when superseded.
	Suggest(ctx context.Context, category, query string, limit int) ([]string, error)
}
