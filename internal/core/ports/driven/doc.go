// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextNormaliser: Repairs encoding defects in raw bytes
//   - ExtractorRegistry: Selects the text extractor for a declared format
//   - Chunker: Splits normalised text into bounded, overlapping chunks
//   - ChunkStore: Atomic chunk persistence (SQLite, PostgreSQL, memory)
//
// # Optional Interfaces
//
//   - DocumentLoader: Reads documents by path for batch ingestion
//   - DocumentWatcher: Reports changed documents for watch ingestion
//   - ConfigStore: Persisted configuration keys
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
