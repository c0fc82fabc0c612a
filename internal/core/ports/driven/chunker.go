package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Chunker splits a document's normalised text into an ordered chunk sequence.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk returns the chunks for a document. Chunk numbers run from 0 to
	// N-1 and every chunk carries the document metadata.
	// Empty text yields no chunks.
	Chunk(ctx context.Context, uri, text string, metadata map[string]any) ([]domain.Chunk, error)
}
