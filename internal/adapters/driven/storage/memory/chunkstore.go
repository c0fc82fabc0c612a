package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/gate"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// FaultHook is called before each row is staged. A non-nil error aborts the batch.
type FaultHook func(chunk domain.Chunk) error

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
	ids    map[string]struct{}
	fault  FaultHook
	gate   *gate.Gate
	closed bool
}

// Option configures a ChunkStore.
type Option func(*ChunkStore)

// WithFaultHook installs a hook used to simulate mid-batch failures.
func WithFaultHook(h FaultHook) Option {
	return func(s *ChunkStore) { s.fault = h }
}

// WithGate bounds concurrent batch writes.
func WithGate(g *gate.Gate) Option {
	return func(s *ChunkStore) { s.gate = g }
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore(opts ...Option) *ChunkStore {
	s := &ChunkStore{
		chunks: make(map[string][]domain.Chunk),
		ids:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveBatch stages every chunk and publishes them together.
func (s *ChunkStore) SaveBatch(ctx context.Context, batch domain.ChunkBatch) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := batch.Validate(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}

	if s.gate != nil {
		release, err := s.gate.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()
	}

	staged := make([]domain.Chunk, 0, batch.Len())
	for _, c := range batch.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.fault != nil {
			if err := s.fault(c); err != nil {
				return fmt.Errorf("inserting chunk %d: %w", c.ChunkNum, err)
			}
		}
		c.Metadata = copyMetadata(c.Metadata)
		staged = append(staged, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	seen := make(map[string]struct{}, len(staged))
	for _, c := range staged {
		if _, dup := s.ids[c.ID]; dup {
			return fmt.Errorf("inserting chunk %d: duplicate id %s", c.ChunkNum, c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("inserting chunk %d: duplicate id %s", c.ChunkNum, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for id := range seen {
		s.ids[id] = struct{}{}
	}
	s.chunks[batch.DocumentURI] = append(s.chunks[batch.DocumentURI], staged...)
	return nil
}

// CountChunks returns the number of chunks stored for a URI.
func (s *ChunkStore) CountChunks(_ context.Context, uri string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[uri]), nil
}

// ListChunks returns a copy of the chunks stored for a URI in insertion order.
func (s *ChunkStore) ListChunks(_ context.Context, uri string) ([]domain.Chunk, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.chunks[uri]
	if len(stored) == 0 {
		return nil, nil
	}
	out := make([]domain.Chunk, len(stored))
	for i, c := range stored {
		c.Metadata = copyMetadata(c.Metadata)
		out[i] = c
	}
	return out, nil
}

// TotalChunks returns the number of chunks across all documents.
func (s *ChunkStore) TotalChunks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Ping reports whether the store is open.
func (s *ChunkStore) Ping(_ context.Context) error {
	return s.checkOpen()
}

// Close marks the store closed.
func (s *ChunkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *ChunkStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return nil
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
