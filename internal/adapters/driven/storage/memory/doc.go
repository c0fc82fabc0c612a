// Package memory provides an in-process implementation of driven.ChunkStore.
//
// Rows are staged outside the lock and published in a single step, which gives
// the same all-or-nothing visibility as a database transaction. It backs the
// "memory" storage driver, dry runs and service tests.
package memory
