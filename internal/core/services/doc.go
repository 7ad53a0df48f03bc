// Package services implements the driving port interfaces.
// Services contain the core business logic of the forms client and
// orchestrate calls to driven ports (adapters).
//
// The suggestion resolver, the payload normalizer and the form controller
// live here; they depend only on ports, never on a concrete transport.
package services
