package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NotNil(t, service)
	require.NotNil(t, service.lookupEnv)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), envMap(nil))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("chunking.chunk_size", int64(500))
	_ = store.Set("chunking.chunk_overlap", int64(50))
	_ = store.Set("storage.driver", "postgres")
	_ = store.Set("storage.acquire_timeout", "5s")
	_ = store.Set("storage.fail_fast", true)
	_ = store.Set("batch.rate_per_second", 2.5)
	_ = store.Set("server.request_timeout", int64(90))

	service := NewSettingsService(store, envMap(nil))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 500, settings.Chunking.ChunkSize)
	assert.Equal(t, 50, settings.Chunking.ChunkOverlap)
	assert.Equal(t, domain.StoragePostgres, settings.Storage.Driver)
	assert.Equal(t, 5*time.Second, settings.Storage.AcquireTimeout)
	assert.True(t, settings.Storage.FailFast)
	assert.Equal(t, 2.5, settings.Batch.RatePerSecond)
	assert.Equal(t, 90*time.Second, settings.Server.RequestTimeout)
}

func TestSettingsService_Get_MistypedValuesUseDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("chunking.chunk_size", "lots")
	_ = store.Set("storage.fail_fast", int64(3))
	_ = store.Set("postgres.host", 12)

	service := NewSettingsService(store, envMap(nil))

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Chunking.ChunkSize, settings.Chunking.ChunkSize)
	assert.False(t, settings.Storage.FailFast)
	assert.Equal(t, defaults.Storage.Postgres.Host, settings.Storage.Postgres.Host)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("chunking.chunk_size", int64(500))
	_ = store.Set("postgres.host", "file-host")

	service := NewSettingsService(store, envMap(map[string]string{
		"CHUNK_SIZE":            "1000",
		"CHUNK_OVERLAP":         "200",
		"POSTGRES_HOST":         "postgres",
		"POSTGRES_PORT":         "6543",
		"POSTGRES_USER":         "ingest",
		"POSTGRES_PASSWORD":     "secret",
		"POSTGRES_DB":           "chunks",
		"SERCHA_STORAGE_DRIVER": "postgres",
		"SERCHA_SQLITE_PATH":    "",
	}))

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 1000, settings.Chunking.ChunkSize)
	assert.Equal(t, 200, settings.Chunking.ChunkOverlap)
	assert.Equal(t, domain.StoragePostgres, settings.Storage.Driver)
	assert.Equal(t, domain.PostgresSettings{
		Host: "postgres", Port: 6543, User: "ingest", Password: "secret", Database: "chunks",
	}, settings.Storage.Postgres)
	assert.Empty(t, settings.Storage.SQLitePath)
}

func TestSettingsService_Get_Errors(t *testing.T) {
	t.Run("malformed environment value", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), envMap(map[string]string{"CHUNK_SIZE": "big"}))

		_, err := service.Get()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorContains(t, err, "CHUNK_SIZE")
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), envMap(map[string]string{
			"CHUNK_SIZE":    "100",
			"CHUNK_OVERLAP": "100",
		}))

		_, err := service.Get()
		assert.ErrorIs(t, err, domain.ErrChunking)
	})

	t.Run("unknown driver", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), envMap(map[string]string{
			"SERCHA_STORAGE_DRIVER": "mysql",
		}))

		_, err := service.Get()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettingsService_Set(t *testing.T) {
	t.Run("persists typed values", func(t *testing.T) {
		store := memory.NewConfigStore()
		service := NewSettingsService(store, envMap(nil))

		require.NoError(t, service.Set("chunking.chunk_size", "1200"))
		require.NoError(t, service.Set("storage.acquire_timeout", "1m"))
		require.NoError(t, service.Set("storage.fail_fast", "true"))

		assert.Equal(t, 1200, store.GetInt("chunking.chunk_size"))
		assert.Equal(t, "1m0s", store.GetString("storage.acquire_timeout"))
		assert.True(t, store.GetBool("storage.fail_fast"))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, 1200, settings.Chunking.ChunkSize)
		assert.Equal(t, time.Minute, settings.Storage.AcquireTimeout)
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), envMap(nil))
		assert.ErrorIs(t, service.Set("search.mode", "hybrid"), domain.ErrInvalidInput)
	})

	t.Run("rejects unparsable value", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), envMap(nil))
		assert.ErrorIs(t, service.Set("batch.workers", "many"), domain.ErrInvalidInput)
	})

	t.Run("rejects value that breaks validation", func(t *testing.T) {
		store := memory.NewConfigStore()
		service := NewSettingsService(store, envMap(nil))

		assert.ErrorIs(t, service.Set("chunking.chunk_overlap", "900"), domain.ErrChunking)
		_, ok := store.Get("chunking.chunk_overlap")
		assert.False(t, ok)
	})
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), envMap(nil))

	keys := service.Keys()

	assert.Contains(t, keys, "chunking.chunk_size")
	assert.Contains(t, keys, "postgres.password")
	assert.IsNonDecreasing(t, keys)
	assert.Len(t, keys, len(settingKeys))
}
