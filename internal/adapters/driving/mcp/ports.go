package mcp

import (
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Forms opens form sessions and normalises payloads.
	Forms driving.FormService

	// Suggestions answers typeahead queries.
	Suggestions driving.SuggestionService

	// Patients looks up employees.
	Patients driving.PatientService

	// Records lists stored records.
	Records driving.RecordService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Forms == nil {
		return ErrMissingFormService
	}
	return nil
}
