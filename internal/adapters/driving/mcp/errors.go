// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants list forms, query suggestions, look up employees and
// submit records through the same services as the CLI.
package mcp

import "errors"

// ErrMissingFormService is returned when the form service is not provided.
var ErrMissingFormService = errors.New("mcp: form service is required")

// ErrNotAvailable is returned by tools whose backing service is not configured.
var ErrNotAvailable = errors.New("mcp: service not available")
