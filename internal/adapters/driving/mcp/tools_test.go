package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests text content", func(t *testing.T) {
		mockIngest := &mockIngestService{chunks: make([]domain.Chunk, 3)}
		server, err := NewServer(&Ports{Ingest: mockIngest})
		require.NoError(t, err)

		input := IngestInput{
			TextContent: "<p>hello</p>",
			DocumentURI: "page.html",
			Format:      "html",
			Metadata:    map[string]any{"team": "docs"},
		}
		_, output, err := server.handleIngest(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "success", output.Status)
		assert.Equal(t, "page.html", output.DocumentURI)
		assert.Equal(t, 3, output.ChunksCreated)
		assert.InDelta(t, 2.0, output.ElapsedMS, 0.001)
		assert.Equal(t, domain.FormatHTML, mockIngest.last.Format)
		assert.Equal(t, "docs", mockIngest.last.Metadata["team"])
	})

	t.Run("text without uri is direct input", func(t *testing.T) {
		mockIngest := &mockIngestService{}
		server, err := NewServer(&Ports{Ingest: mockIngest})
		require.NoError(t, err)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{TextContent: "hello"})

		require.NoError(t, err)
		assert.Equal(t, directInputURI, output.DocumentURI)
		assert.NotNil(t, mockIngest.last.Metadata)
	})

	t.Run("path is ingested through batch", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Ingest: &mockIngestService{},
			Batch:  &mockBatchService{item: driving.BatchItem{Chunks: 4}},
		})
		require.NoError(t, err)

		_, output, err := server.handleIngest(ctx, nil, IngestInput{DocumentURI: "/data/a.md"})

		require.NoError(t, err)
		assert.Equal(t, "/data/a.md", output.DocumentURI)
		assert.Equal(t, 4, output.ChunksCreated)
	})

	t.Run("path failure is returned", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Ingest: &mockIngestService{},
			Batch:  &mockBatchService{item: driving.BatchItem{Err: fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrNotFound)}},
		})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{DocumentURI: "/data/missing.md"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("path without batch service", func(t *testing.T) {
		server, err := NewServer(&Ports{Ingest: &mockIngestService{}})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{DocumentURI: "/data/a.md"})

		assert.Error(t, err)
	})

	t.Run("nothing provided", func(t *testing.T) {
		server, err := NewServer(&Ports{Ingest: &mockIngestService{}})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("returns error on ingest failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Ingest: &mockIngestService{err: fmt.Errorf("%w: db down", domain.ErrStorage)}})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{TextContent: "x"})

		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestServer_handlePreview(t *testing.T) {
	ctx := context.Background()

	t.Run("returns chunks", func(t *testing.T) {
		mockIngest := &mockIngestService{chunks: []domain.Chunk{
			{ChunkNum: 0, Text: "héllo"},
			{ChunkNum: 1, Text: "world"},
		}}
		server, err := NewServer(&Ports{Ingest: mockIngest})
		require.NoError(t, err)

		_, output, err := server.handlePreview(ctx, nil, PreviewInput{TextContent: "héllo world"})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 5, output.Chunks[0].Length)
		assert.Equal(t, 1, output.Chunks[1].ChunkNum)
		assert.Equal(t, directInputURI, mockIngest.last.URI)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Ingest: &mockIngestService{err: errors.New("preview failed")}})
		require.NoError(t, err)

		_, _, err = server.handlePreview(ctx, nil, PreviewInput{TextContent: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "preview failed")
	})
}
