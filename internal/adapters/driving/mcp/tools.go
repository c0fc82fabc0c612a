package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// directInputURI identifies text submitted without a document URI.
const directInputURI = "direct_input"

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	TextContent string         `json:"text_content,omitempty" jsonschema:"document text to ingest"`
	DocumentURI string         `json:"document_uri,omitempty" jsonschema:"document identifier, or a server-side path when text_content is empty"`
	Format      string         `json:"format,omitempty" jsonschema:"plaintext, markdown or html (derived from the URI when omitted)"`
	Metadata    map[string]any `json:"metadata,omitempty" jsonschema:"metadata attached to every chunk"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	Status        string  `json:"status"`
	DocumentURI   string  `json:"document_uri"`
	ChunksCreated int     `json:"chunks_created"`
	ElapsedMS     float64 `json:"elapsed_ms"`
}

// PreviewInput is the input schema for the preview_chunks tool.
type PreviewInput struct {
	TextContent string `json:"text_content" jsonschema:"document text to chunk"`
	DocumentURI string `json:"document_uri,omitempty" jsonschema:"document identifier used to derive the format"`
	Format      string `json:"format,omitempty" jsonschema:"plaintext, markdown or html"`
}

// PreviewOutput is the output schema for the preview_chunks tool.
type PreviewOutput struct {
	Chunks []PreviewChunk `json:"chunks"`
	Count  int            `json:"count"`
}

// PreviewChunk is one chunk of a preview.
type PreviewChunk struct {
	ChunkNum int    `json:"chunk_num"`
	Length   int    `json:"length"`
	Text     string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Normalise, chunk and store a document for full-text search",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "preview_chunks",
		Description: "Show how a document would be chunked without storing it",
	}, s.handlePreview)
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	uri := strings.TrimSpace(input.DocumentURI)
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	if input.TextContent == "" {
		if uri == "" {
			return nil, IngestOutput{}, fmt.Errorf("%w: must provide document_uri or text_content", domain.ErrValidation)
		}
		return s.ingestPath(ctx, uri, metadata)
	}

	if uri == "" {
		uri = directInputURI
	}
	result, err := s.ports.Ingest.Ingest(ctx, domain.RawDocument{
		URI:      uri,
		Content:  []byte(input.TextContent),
		Format:   domain.Format(input.Format),
		Metadata: metadata,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Status:        string(result.Status),
		DocumentURI:   result.DocumentURI,
		ChunksCreated: result.ChunksCreated,
		ElapsedMS:     float64(result.Elapsed.Microseconds()) / 1000,
	}, nil
}

func (s *Server) ingestPath(
	ctx context.Context,
	path string,
	metadata map[string]any,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Batch == nil {
		return nil, IngestOutput{}, errors.New("path ingestion is not enabled on this server")
	}

	report, err := s.ports.Batch.IngestPaths(ctx, []string{path}, metadata)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	item := report.Items[0]
	if item.Err != nil {
		return nil, IngestOutput{}, item.Err
	}

	return nil, IngestOutput{
		Status:        string(domain.StatusSuccess),
		DocumentURI:   path,
		ChunksCreated: item.Chunks,
		ElapsedMS:     float64(report.Elapsed.Microseconds()) / 1000,
	}, nil
}

// handlePreview handles the preview_chunks tool invocation.
func (s *Server) handlePreview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PreviewInput,
) (*mcp.CallToolResult, PreviewOutput, error) {
	uri := input.DocumentURI
	if uri == "" {
		uri = directInputURI
	}

	chunks, err := s.ports.Ingest.Preview(ctx, domain.RawDocument{
		URI:     uri,
		Content: []byte(input.TextContent),
		Format:  domain.Format(input.Format),
	})
	if err != nil {
		return nil, PreviewOutput{}, err
	}

	output := PreviewOutput{
		Chunks: make([]PreviewChunk, len(chunks)),
		Count:  len(chunks),
	}
	for i := range chunks {
		output.Chunks[i] = PreviewChunk{
			ChunkNum: chunks[i].ChunkNum,
			Length:   len([]rune(chunks[i].Text)),
			Text:     chunks[i].Text,
		}
	}

	return nil, output, nil
}
