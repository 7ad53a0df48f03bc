package driving

import (
	"context"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// SuggestionService provides remote typeahead to external actors.
type SuggestionService interface {
	// Suggest performs a single, non-debounced lookup.
	// Empty queries return no candidates without a request.
	Suggest(ctx context.Context, category, query string) ([]string, error)

	// NewResolver creates a debounced resolver for one input.
	NewResolver(ctx context.Context, category string) SuggestionResolver
}

// SuggestionResolver drives the typeahead of a single input.
type SuggestionResolver interface {
	// SetQuery records the typed value and schedules a debounced search.
	SetQuery(query string)

	// Focus opens the input.
	Focus()

	// Blur closes the menu after the grace delay.
	Blur()

	// Select commits a candidate and closes the menu.
	Select(candidate string)

	// State returns a snapshot of the suggestion state.
	State() domain.SuggestionState

	// Changes delivers a snapshot after every state change.
	// The channel is closed by Close.
	Changes() <-chan domain.SuggestionState

	// Close cancels pending work and releases the resolver.
	Close()
}
