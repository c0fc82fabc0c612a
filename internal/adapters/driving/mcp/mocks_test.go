package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	last   domain.RawDocument
	chunks []domain.Chunk
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, raw domain.RawDocument) (*domain.IngestionResult, error) {
	m.last = raw
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestionResult{
		Status:        domain.StatusSuccess,
		DocumentURI:   raw.URI,
		ChunksCreated: len(m.chunks),
		Elapsed:       2 * time.Millisecond,
	}, nil
}

func (m *mockIngestService) Preview(_ context.Context, raw domain.RawDocument) ([]domain.Chunk, error) {
	m.last = raw
	return m.chunks, m.err
}

// mockBatchService is a mock implementation of driving.BatchService.
type mockBatchService struct {
	item driving.BatchItem
	err  error
}

func (m *mockBatchService) IngestPaths(_ context.Context, paths []string, _ map[string]any) (*driving.BatchReport, error) {
	item := m.item
	item.URI = paths[0]
	return &driving.BatchReport{Items: []driving.BatchItem{item}, Elapsed: time.Millisecond}, m.err
}

func (m *mockBatchService) IngestDir(context.Context, string, map[string]any) (*driving.BatchReport, error) {
	return &driving.BatchReport{}, m.err
}

func (m *mockBatchService) WatchDir(context.Context, string, map[string]any, func(driving.BatchItem)) error {
	return m.err
}

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	report driving.HealthReport
}

func (m *mockHealthService) Check(context.Context) driving.HealthReport {
	return m.report
}
