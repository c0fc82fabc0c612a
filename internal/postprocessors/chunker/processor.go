// Package chunker provides the recursive, separator-aware text chunker.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor turns a document's normalised text into domain chunks.
type Processor struct {
	splitter *Splitter
	newID    func() string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithIDGenerator sets the function used to assign chunk IDs.
// Defaults to random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(p *Processor) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New creates a chunker processor for cfg. Invalid chunking settings are
// rejected with domain.ErrChunking before any text is seen.
func New(cfg domain.ChunkingSettings, opts ...Option) (*Processor, error) {
	splitter, err := NewSplitter(cfg)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		splitter: splitter,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "recursive"
}

// Chunk splits text and wraps each piece as a chunk of the document at uri.
// Chunk numbers run from 0 in emission order; each chunk gets its own copy
// of metadata.
func (p *Processor) Chunk(ctx context.Context, uri, text string, metadata map[string]any) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := p.splitter.Split(text)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{
			ID:          p.newID(),
			DocumentURI: uri,
			ChunkNum:    i,
			Text:        t,
			Metadata:    copyMetadata(metadata),
		}
	}
	return chunks, nil
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
