package domain

// DefaultSuggestionLimit is the number of candidates requested per query.
const DefaultSuggestionLimit = 5

// SuggestionState is the typeahead state of a single input.
type SuggestionState struct {
	// Query is the free-typed value. It is always the committed field value.
	Query string

	// Candidates is bounded by the resolver limit.
	Candidates []string

	// Loading is true between debounce fire and resolution of that request.
	Loading bool

	// Open is true while the input is focused.
	Open bool
}

// ShowMenu reports whether the dropdown menu is rendered.
func (s SuggestionState) ShowMenu() bool {
	return s.Open && (s.Loading || len(s.Candidates) > 0)
}

// SuggestionItem is one entry of the search endpoint response.
type SuggestionItem struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SuggestionEnvelope is the search endpoint response body.
type SuggestionEnvelope struct {
	Success bool             `json:"success"`
	Count   *int             `json:"count,omitempty"`
	Data    []SuggestionItem `json:"data"`
}

// Names returns the non-empty names in order.
func (e SuggestionEnvelope) Names() []string {
	names := make([]string, 0, len(e.Data))
	for _, item := range e.Data {
		if item.Name == "" {
			continue
		}
		names = append(names, item.Name)
	}
	return names
}
