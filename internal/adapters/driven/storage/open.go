// Package storage selects a chunk store implementation by driver.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/gate"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Open creates the chunk store for cfg.Driver. The schema is not migrated.
func Open(ctx context.Context, cfg domain.StorageSettings) (driven.ChunkStore, error) {
	logger.Debug("opening %s storage", cfg.Driver)

	switch cfg.Driver {
	case domain.StorageSQLite:
		return sqlite.NewStore(cfg)
	case domain.StoragePostgres:
		return postgres.NewStore(ctx, cfg)
	case domain.StorageMemory:
		return memory.NewChunkStore(memory.WithGate(gate.FromSettings(cfg))), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", domain.ErrInvalidInput, cfg.Driver)
	}
}

// Migrator returns the schema migrator of store, or nil when the store
// has no schema.
func Migrator(store driven.ChunkStore) driving.MigrationService {
	m, _ := store.(driving.MigrationService)
	return m
}
