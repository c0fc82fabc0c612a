package api

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// mockIngestService records the documents it receives.
type mockIngestService struct {
	mu     sync.Mutex
	docs   []domain.RawDocument
	chunks int
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, raw domain.RawDocument) (*domain.IngestionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, raw)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestionResult{
		Status:        domain.StatusSuccess,
		DocumentURI:   raw.URI,
		ChunksCreated: m.chunks,
		Elapsed:       1500 * time.Microsecond,
	}, nil
}

func (m *mockIngestService) Preview(_ context.Context, _ domain.RawDocument) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockIngestService) last() domain.RawDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[len(m.docs)-1]
}

// mockBatchService answers from a fixed per-path table.
type mockBatchService struct {
	errs     map[string]error
	chunks   int
	metadata map[string]any
}

func (m *mockBatchService) IngestPaths(_ context.Context, paths []string, metadata map[string]any) (*driving.BatchReport, error) {
	m.metadata = metadata
	report := &driving.BatchReport{Items: make([]driving.BatchItem, len(paths)), Elapsed: time.Millisecond}
	for i, p := range paths {
		report.Items[i] = driving.BatchItem{URI: p, Err: m.errs[p]}
		if m.errs[p] == nil {
			report.Items[i].Chunks = m.chunks
		}
	}
	return report, nil
}

func (m *mockBatchService) IngestDir(ctx context.Context, _ string, metadata map[string]any) (*driving.BatchReport, error) {
	return m.IngestPaths(ctx, nil, metadata)
}

func (m *mockBatchService) WatchDir(context.Context, string, map[string]any, func(driving.BatchItem)) error {
	return nil
}

// mockHealthService returns a fixed report.
type mockHealthService struct {
	report driving.HealthReport
}

func (m *mockHealthService) Check(context.Context) driving.HealthReport {
	return m.report
}
