package domain

import "sort"

// Payload is the normalised body sent to a create or update endpoint.
// Values are string, float64, bool, nil, []string or []map[string]any.
// Map keys are emitted sorted, so equal payloads encode identically.
type Payload map[string]any

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Keys returns the payload keys in sorted order.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
