// Package domain defines the core business entities for hisforms.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Schema: A form definition (fields, repeatable lists, gated blocks, derivations)
//   - FormState: The in-memory values of one form session
//   - Payload: The normalised JSON body sent to the backend
//   - SuggestionState: The typeahead state of one input
//   - Patient, Record, Session: Backend entities consumed by the forms
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
