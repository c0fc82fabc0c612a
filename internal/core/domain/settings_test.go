package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChunkingSettings_Validate tests chunk parameter validation
func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChunkingSettings
		wantErr bool
	}{
		{"defaults", ChunkingSettings{ChunkSize: 800, ChunkOverlap: 150}, false},
		{"zero overlap", ChunkingSettings{ChunkSize: 10, ChunkOverlap: 0}, false},
		{"overlap one below size", ChunkingSettings{ChunkSize: 10, ChunkOverlap: 9}, false},
		{"overlap equals size", ChunkingSettings{ChunkSize: 10, ChunkOverlap: 10}, true},
		{"overlap exceeds size", ChunkingSettings{ChunkSize: 100, ChunkOverlap: 150}, true},
		{"zero size", ChunkingSettings{ChunkSize: 0}, true},
		{"negative overlap", ChunkingSettings{ChunkSize: 10, ChunkOverlap: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrChunking)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestChunkingSettings_Stride tests stride computation
func TestChunkingSettings_Stride(t *testing.T) {
	assert.Equal(t, 650, ChunkingSettings{ChunkSize: 800, ChunkOverlap: 150}.Stride())
}

// TestStorageDriver tests driver helpers
func TestStorageDriver(t *testing.T) {
	tests := []struct {
		driver     StorageDriver
		valid      bool
		searchType string
	}{
		{StorageSQLite, true, "sqlite_fts5"},
		{StoragePostgres, true, "postgresql_tsvector"},
		{StorageMemory, true, "none"},
		{StorageDriver("mysql"), false, "none"},
	}

	for _, tt := range tests {
		t.Run(string(tt.driver), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.driver.IsValid())
			assert.Equal(t, tt.searchType, tt.driver.SearchType())
			assert.Equal(t, string(tt.driver), tt.driver.String())
			assert.NotEmpty(t, tt.driver.Description())
		})
	}
	assert.Equal(t, unknownDescription, StorageDriver("mysql").Description())
}

// TestPostgresSettings_DSN tests connection URL building
func TestPostgresSettings_DSN(t *testing.T) {
	p := PostgresSettings{Host: "db", Port: 5433, User: "rag user", Password: "p@ss", Database: "ragdb"}

	assert.Equal(t, "postgres://rag%20user:p%40ss@db:5433/ragdb", p.DSN())
}

// TestDefaultSettings tests the default configuration values
func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 800, s.Chunking.ChunkSize)
	assert.Equal(t, 150, s.Chunking.ChunkOverlap)
	assert.Equal(t, StorageSQLite, s.Storage.Driver)
	assert.Equal(t, "localhost", s.Storage.Postgres.Host)
	assert.Equal(t, 5432, s.Storage.Postgres.Port)
	assert.Equal(t, "ragdb", s.Storage.Postgres.Database)
	assert.Equal(t, 10, s.Storage.MaxConns)
	assert.Equal(t, 30*time.Second, s.Storage.AcquireTimeout)
	assert.Equal(t, ":8001", s.Server.Addr)
	assert.Equal(t, 4, s.Batch.Workers)
	assert.Equal(t, "warn", s.Log.Level)
	require.NoError(t, s.Validate())
}

// TestSettings_Validate tests whole-configuration validation
func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"bad chunking", func(s *Settings) { s.Chunking.ChunkOverlap = 900 }, ErrChunking},
		{"bad driver", func(s *Settings) { s.Storage.Driver = "mysql" }, ErrInvalidInput},
		{"no connections", func(s *Settings) { s.Storage.MaxConns = 0 }, ErrInvalidInput},
		{"no workers", func(s *Settings) { s.Batch.Workers = 0 }, ErrInvalidInput},
		{"negative rate", func(s *Settings) { s.Batch.RatePerSecond = -1 }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), tt.wantErr)
		})
	}
}
