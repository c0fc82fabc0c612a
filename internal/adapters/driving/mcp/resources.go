package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for ingestion resources.
	uriScheme = "sercha://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "health",
		Name:        "health",
		Description: "Storage connectivity of the ingestion service",
		MIMEType:    "application/json",
	}, s.handleHealthResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "formats",
		Name:        "formats",
		Description: "Document formats accepted by ingest_document",
		MIMEType:    "application/json",
	}, s.handleFormatsResource)
}

// handleHealthResource reports storage health.
func (s *Server) handleHealthResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Health == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report := s.ports.Health.Check(ctx)
	info := struct {
		Status     string `json:"status"`
		Database   string `json:"database"`
		SearchType string `json:"search_type"`
		Error      string `json:"error,omitempty"`
	}{
		Status:     report.Status(),
		Database:   report.Database(),
		SearchType: report.Driver.SearchType(),
	}
	if report.Err != nil {
		info.Error = report.Err.Error()
	}

	return jsonResource(req.Params.URI, info)
}

// handleFormatsResource lists the supported formats.
func (s *Server) handleFormatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, domain.SupportedFormats())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
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
