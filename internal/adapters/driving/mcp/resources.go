package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for form resources.
	uriScheme = "hisforms://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "forms",
		Name:        "forms",
		Description: "Names and titles of every registered form",
		MIMEType:    "application/json",
	}, s.handleFormsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "forms/{name}",
		Name:        "form-schema",
		Description: "Field, list and block definitions of a form",
		MIMEType:    "application/json",
	}, s.handleSchemaResource)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleFormsResource lists the registered forms.
func (s *Server) handleFormsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type formInfo struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		URI   string `json:"uri"`
	}

	schemas := s.ports.Forms.Forms()
	infos := make([]formInfo, len(schemas))
	for i := range schemas {
		infos[i] = formInfo{
			Name:  schemas[i].Name,
			Title: schemas[i].DisplayTitle(),
			URI:   uriScheme + "forms/" + schemas[i].Name,
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleSchemaResource returns the definition of one form.
func (s *Server) handleSchemaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractFormName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	schema, err := s.ports.Forms.Schema(name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, schema)
}

// extractFormName extracts the form name from a URI like hisforms://forms/{name}.
func extractFormName(uri string) string {
	const prefix = uriScheme + "forms/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
