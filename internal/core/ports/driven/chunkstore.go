package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// ChunkStore persists chunk rows. The text-search representation of each
// row is maintained by the storage engine, never by the store itself.
type ChunkStore interface {
	// SaveBatch writes every chunk of the batch in one unit of work.
	// Either all rows become visible or none do.
	SaveBatch(ctx context.Context, batch domain.ChunkBatch) error

	// CountChunks returns the number of rows stored for a document.
	CountChunks(ctx context.Context, documentURI string) (int, error)

	// ListChunks returns the rows stored for a document ordered by chunk number.
	ListChunks(ctx context.Context, documentURI string) ([]domain.Chunk, error)

	// Ping verifies connectivity to the storage engine.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
