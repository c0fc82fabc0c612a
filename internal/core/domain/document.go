package domain

import "time"

// Chunk represents a bounded slice of a document's normalised text.
// Every chunk belongs to exactly one document.
type Chunk struct {
	// ID is the unique row identity of the chunk.
	ID string

	// DocumentURI links to the owning document.
	DocumentURI string

	// ChunkNum is the zero-based position in emission order.
	ChunkNum int

	// Text is the chunk content.
	Text string

	// Metadata is copied verbatim from the owning document.
	Metadata map[string]any
}

// ChunkBatch is the full ordered chunk sequence of one document.
// A batch is persisted as a single unit and discarded afterwards.
type ChunkBatch struct {
	// DocumentURI identifies the document every chunk belongs to.
	DocumentURI string

	// Metadata is the document metadata shared by all chunks.
	Metadata map[string]any

	// Chunks are ordered by ChunkNum, starting at zero.
	Chunks []Chunk
}

// Len returns the number of chunks in the batch.
func (b ChunkBatch) Len() int {
	return len(b.Chunks)
}

// Validate checks that every chunk belongs to the batch document and that
// chunk numbers run from 0 to N-1 without gaps.
func (b ChunkBatch) Validate() error {
	if b.DocumentURI == "" {
		return ErrInvalidInput
	}
	for i, c := range b.Chunks {
		if c.DocumentURI != b.DocumentURI || c.ChunkNum != i {
			return ErrInvalidInput
		}
	}
	return nil
}

// IngestionStatus is the outcome label reported to callers.
type IngestionStatus string

// Ingestion statuses.
const (
	// StatusSuccess indicates the document was persisted.
	StatusSuccess IngestionStatus = "success"

	// StatusFailed indicates the ingestion failed and nothing was persisted.
	StatusFailed IngestionStatus = "failed"
)

// IngestionResult describes a completed ingestion call.
// It is surfaced to the caller and never persisted.
type IngestionResult struct {
	// Status is the outcome of the ingestion.
	Status IngestionStatus

	// DocumentURI is the identifier of the ingested document.
	DocumentURI string

	// ChunksCreated is the number of chunk rows written.
	ChunksCreated int

	// Elapsed is the wall time spent on the whole pipeline.
	Elapsed time.Duration
}
