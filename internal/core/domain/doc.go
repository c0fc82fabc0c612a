// Package domain defines the core business entities for sercha-ingest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes handed to the ingestion core
//   - Chunk: A bounded slice of a document's normalised text
//   - ChunkBatch: Every chunk of one document, persisted as a unit
//   - IngestionResult: The outcome reported back to the caller
//   - Settings: Immutable process configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
