// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ConfigStore: Application configuration
//   - SchemaSource: Form definition tables
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SuggestionSource: Remote typeahead. Without it inputs behave as plain text.
//   - PatientDirectory: Employee lookup and patient upsert. Without it dependent fields are typed by hand.
//   - RecordStore: Record CRUD. Without it forms can only be normalised, not submitted.
//   - DropdownSource / DropdownCache: Enumerated option lists.
//   - TokenProvider: Bearer tokens. Without it requests are sent unauthenticated.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
