// Package postgres provides the PostgreSQL implementation of driven.ChunkStore.
//
// Connections are pooled with pgxpool. Each batch is written row by row inside
// a single transaction; a BEFORE INSERT trigger fills the text_search tsvector
// column, so the adapter never computes the search representation itself.
//
// The schema in migrations/ is only applied through Store.Migrate.
package postgres
