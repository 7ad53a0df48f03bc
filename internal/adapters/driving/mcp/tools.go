package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// FormSummary describes a registered form.
type FormSummary struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Resource string `json:"resource"`
	Fields   int    `json:"fields"`
	Lists    int    `json:"lists"`
	Lookup   bool   `json:"lookup"`
}

// ListFormsInput is the input schema for the list_forms tool.
type ListFormsInput struct{}

// ListFormsOutput is the output schema for the list_forms tool.
type ListFormsOutput struct {
	Forms []FormSummary `json:"forms"`
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Category string `json:"category" jsonschema:"suggestion category such as diagnosis, hospital or medicine"`
	Query    string `json:"query" jsonschema:"text typed so far"`
}

// SuggestOutput is the output schema for the suggest tool.
type SuggestOutput struct {
	Candidates []string `json:"candidates"`
}

// LookupInput is the input schema for the lookup_employee tool.
type LookupInput struct {
	EmpNo string `json:"empNo" jsonschema:"employee number"`
}

// LookupOutput is the output schema for the lookup_employee tool.
type LookupOutput struct {
	Found   bool            `json:"found"`
	Patient *domain.Patient `json:"patient,omitempty"`
}

// RecordInput carries form values for normalize_payload and submit_record.
type RecordInput struct {
	Form     string         `json:"form" jsonschema:"form name, see list_forms"`
	Values   map[string]any `json:"values" jsonschema:"field values keyed by field and list name"`
	RecordID string         `json:"recordId,omitempty" jsonschema:"existing record id to update"`
}

// NormalizeOutput is the output schema for the normalize_payload tool.
type NormalizeOutput struct {
	Payload domain.Payload    `json:"payload"`
	Missing []string          `json:"missing,omitempty"`
	Invalid map[string]string `json:"invalid,omitempty"`
}

// SubmitOutput is the output schema for the submit_record tool.
type SubmitOutput struct {
	RecordID string   `json:"recordId,omitempty"`
	Created  bool     `json:"created"`
	Notices  []string `json:"notices,omitempty"`
}

// ListRecordsInput is the input schema for the list_records tool.
type ListRecordsInput struct {
	Form   string `json:"form" jsonschema:"form name"`
	Search string `json:"search,omitempty" jsonschema:"free text filter"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of records (default 20)"`
}

// ListRecordsOutput is the output schema for the list_records tool.
type ListRecordsOutput struct {
	Records []map[string]any `json:"records"`
	Count   int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_forms",
		Description: "List the HIS forms that can be filled and submitted",
	}, s.handleListForms)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest",
		Description: "Look up suggestion candidates for a category",
	}, s.handleSuggest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_employee",
		Description: "Find an employee by employee number",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "normalize_payload",
		Description: "Show the payload a form submission would send, with validation problems",
	}, s.handleNormalize)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_record",
		Description: "Create a record, or update it when recordId is given",
	}, s.handleSubmit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_records",
		Description: "List stored records of a form",
	}, s.handleListRecords)
}

func (s *Server) handleListForms(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListFormsInput,
) (*mcp.CallToolResult, ListFormsOutput, error) {
	schemas := s.ports.Forms.Forms()
	out := ListFormsOutput{Forms: make([]FormSummary, len(schemas))}
	for i := range schemas {
		out.Forms[i] = FormSummary{
			Name:     schemas[i].Name,
			Title:    schemas[i].DisplayTitle(),
			Resource: schemas[i].Resource,
			Fields:   len(schemas[i].Fields),
			Lists:    len(schemas[i].Lists),
			Lookup:   schemas[i].Lookup != nil,
		}
	}
	return nil, out, nil
}

func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	if s.ports.Suggestions == nil {
		return nil, SuggestOutput{}, ErrNotAvailable
	}
	names, err := s.ports.Suggestions.Suggest(ctx, input.Category, input.Query)
	if err != nil {
		return nil, SuggestOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, SuggestOutput{Candidates: names}, nil
}

func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	if s.ports.Patients == nil {
		return nil, LookupOutput{}, ErrNotAvailable
	}
	patient, err := s.ports.Patients.Lookup(ctx, input.EmpNo)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, LookupOutput{}, nil
	}
	if err != nil {
		return nil, LookupOutput{}, err
	}
	return nil, LookupOutput{Found: true, Patient: patient}, nil
}

func (s *Server) open(input RecordInput) (driving.FormHandle, error) {
	if input.Form == "" {
		return nil, fmt.Errorf("%w: form is required", domain.ErrInvalidInput)
	}
	return s.ports.Forms.Open(input.Form, input.Values, input.RecordID)
}

func (s *Server) handleNormalize(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RecordInput,
) (*mcp.CallToolResult, NormalizeOutput, error) {
	handle, err := s.open(input)
	if err != nil {
		return nil, NormalizeOutput{}, err
	}

	out := NormalizeOutput{Payload: handle.Snapshot()}
	var ve *domain.ValidationError
	if err := handle.Validate(); errors.As(err, &ve) {
		out.Missing = ve.Missing
		out.Invalid = ve.Invalid
	}
	return nil, out, nil
}

func (s *Server) handleSubmit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordInput,
) (*mcp.CallToolResult, SubmitOutput, error) {
	handle, err := s.open(input)
	if err != nil {
		return nil, SubmitOutput{}, err
	}

	var out SubmitOutput
	if handle.Schema().Lookup != nil {
		notice, err := handle.LookupEmployee(ctx)
		if err != nil {
			return nil, SubmitOutput{}, err
		}
		if notice != nil {
			out.Notices = append(out.Notices, notice.Message)
		}
	}

	result, err := handle.Submit(ctx)
	if result != nil {
		out.Created = result.Created
		for _, n := range result.Notices {
			out.Notices = append(out.Notices, n.Message)
		}
		if result.Record != nil {
			out.RecordID = result.Record.ID
		}
	}
	if err != nil {
		return nil, out, err
	}
	return nil, out, nil
}

func (s *Server) handleListRecords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRecordsInput,
) (*mcp.CallToolResult, ListRecordsOutput, error) {
	if s.ports.Records == nil {
		return nil, ListRecordsOutput{}, ErrNotAvailable
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	records, err := s.ports.Records.List(ctx, input.Form, domain.ListOptions{Limit: limit, Search: input.Search})
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}

	out := ListRecordsOutput{Records: make([]map[string]any, len(records)), Count: len(records)}
	for i := range records {
		out.Records[i] = records[i].Data
	}
	return nil, out, nil
}
