// Package app wires adapters and services into the driving ports used by
// the command-line, HTTP and MCP surfaces.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-ingest/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/core/services"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
	"github.com/custodia-labs/sercha-ingest/internal/normalisers"
	"github.com/custodia-labs/sercha-ingest/internal/normalisers/encoding"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors/chunker"
)

// Factory returns the CLI factory backed by the real adapters.
func Factory() cli.Factory {
	return cli.Factory{
		Settings: OpenSettings,
		Services: Build,
	}
}

// OpenSettings opens the TOML config file at path with environment overrides.
func OpenSettings(path string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(path)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store, nil), nil
}

// Build opens storage and assembles the ingestion pipeline for settings.
func Build(ctx context.Context, settings domain.Settings) (*cli.Services, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	splitter, err := chunker.New(settings.Chunking)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, settings.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", settings.Storage.Driver, err)
	}

	ingest := services.NewIngestService(encoding.New(), normalisers.NewDefaultRegistry(), splitter, store)

	loader := filesystem.New(filesystem.DefaultSource)
	batch, err := services.NewBatchService(ingest, loader, settings.Batch, services.WithWatcher(loader))
	if err != nil {
		store.Close() //nolint:errcheck
		return nil, err
	}

	logger.Debug("pipeline ready: %s storage, chunk size %d, overlap %d",
		settings.Storage.Driver, settings.Chunking.ChunkSize, settings.Chunking.ChunkOverlap)

	return &cli.Services{
		Settings: settings,
		Ingest:   ingest,
		Batch:    batch,
		Health:   services.NewHealthService(store, settings.Storage.Driver),
		Migrator: storage.Migrator(store),
		Close: func() error {
			batch.Release()
			return store.Close()
		},
	}, nil
}
