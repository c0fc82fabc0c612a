// Package sqlite provides the embedded SQLite implementation of driven.ChunkStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// Chunks live in the document_chunks table. The search representation is an
// external-content FTS5 table (document_chunks_fts) maintained entirely by
// triggers, so inserting a row is all it takes to make it searchable.
//
// The schema is provisioned by Migrate, which applies the versioned .up.sql files
// embedded from migrations/. Opening a store never migrates implicitly.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha/data/chunks.db
//
// # Thread Safety
//
// All operations are thread-safe. Concurrent batch writes are bounded by a
// gate.Gate and serialised by SQLite in WAL mode.
package sqlite
