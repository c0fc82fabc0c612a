// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants push documents through the ingestion pipeline.
package mcp

import "errors"

// ErrMissingIngestService is returned when the ingest service is not provided.
var ErrMissingIngestService = errors.New("mcp: ingest service is required")
