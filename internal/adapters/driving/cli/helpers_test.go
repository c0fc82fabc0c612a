package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-ingest/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/services"
	"github.com/custodia-labs/sercha-ingest/internal/normalisers"
	"github.com/custodia-labs/sercha-ingest/internal/normalisers/encoding"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors/chunker"
)

// testEnv is a fully wired pipeline over an in-memory store.
type testEnv struct {
	store    *memory.ChunkStore
	config   *memory.ConfigStore
	settings domain.Settings
}

// setupTestServices installs in-memory services and resets command flags.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	settings := domain.DefaultSettings()
	settings.Storage.Driver = domain.StorageMemory
	settings.Chunking = domain.ChunkingSettings{ChunkSize: 100, ChunkOverlap: 20}

	splitter, err := chunker.New(settings.Chunking)
	require.NoError(t, err)

	env := &testEnv{
		store:    memory.NewChunkStore(),
		config:   memory.NewConfigStore(),
		settings: settings,
	}
	ingest := services.NewIngestService(encoding.New(), normalisers.NewDefaultRegistry(), splitter, env.store)
	batch, err := services.NewBatchService(ingest, filesystem.New(filesystem.DefaultSource), settings.Batch)
	require.NoError(t, err)

	oldServices, oldSettings := activeServices, settingsService
	activeServices = &Services{
		Settings: settings,
		Ingest:   ingest,
		Batch:    batch,
		Health:   services.NewHealthService(env.store, settings.Storage.Driver),
	}
	settingsService = services.NewSettingsService(env.config, func(string) (string, bool) { return "", false })
	resetFlags()

	t.Cleanup(func() {
		batch.Release()
		activeServices, settingsService = oldServices, oldSettings
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	return env
}

func resetFlags() {
	verbose = false
	ingestURI, ingestFormat, ingestCharset, ingestMetadata, ingestJSON = "", "", "", "", false
	batchMetadata, batchJSON = "", false
	healthJSON = false
	chunkFormat, chunkFull, chunkJSON = "", false, false
	serveAddr = ""
}

// run executes the root command with args and returns its output.
func run(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
