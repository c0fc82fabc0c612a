package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

const unknownDescription = "Unknown"

// Chunking defaults.
const (
	// DefaultChunkSize is the maximum number of characters per chunk.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the number of characters shared by adjacent chunks.
	DefaultChunkOverlap = 150
)

// ChunkingSettings holds the chunker parameters.
type ChunkingSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters repeated between chunks.
	// Must be smaller than ChunkSize.
	ChunkOverlap int
}

// Validate reports whether the chunking parameters are usable.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", ErrChunking, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			ErrChunking, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Stride returns the distance between the starts of two adjacent chunks
// when both are fully packed.
func (c ChunkingSettings) Stride() int {
	return c.ChunkSize - c.ChunkOverlap
}

// StorageDriver identifies a ChunkStore backend.
type StorageDriver string

// Available storage drivers.
const (
	// StorageSQLite is the embedded SQLite store with FTS5 triggers.
	StorageSQLite StorageDriver = "sqlite"

	// StoragePostgres is PostgreSQL with a tsvector trigger.
	StoragePostgres StorageDriver = "postgres"

	// StorageMemory keeps chunks in process memory. Used for dry runs.
	StorageMemory StorageDriver = "memory"
)

// IsValid returns true if the driver is recognised.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d StorageDriver) String() string {
	return string(d)
}

// Description returns a human-readable description of the driver.
func (d StorageDriver) Description() string {
	switch d {
	case StorageSQLite:
		return "SQLite (embedded, FTS5)"
	case StoragePostgres:
		return "PostgreSQL (tsvector)"
	case StorageMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// SearchType names the text-search representation maintained by the engine.
func (d StorageDriver) SearchType() string {
	switch d {
	case StorageSQLite:
		return "sqlite_fts5"
	case StoragePostgres:
		return "postgresql_tsvector"
	default:
		return "none"
	}
}

// PostgresSettings holds connection parameters for PostgreSQL.
type PostgresSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN returns a connection URL for the settings.
func (p PostgresSettings) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
	}
	return u.String()
}

// StorageSettings holds ChunkStore configuration.
type StorageSettings struct {
	// Driver selects the backend.
	Driver StorageDriver

	// SQLitePath is the database file for the SQLite driver.
	SQLitePath string

	// Postgres holds PostgreSQL connection parameters.
	Postgres PostgresSettings

	// MaxConns bounds concurrent units of work against the store.
	MaxConns int

	// AcquireTimeout bounds how long an ingestion waits for a free slot.
	// Zero waits until the request context ends.
	AcquireTimeout time.Duration

	// FailFast makes an exhausted pool fail immediately instead of waiting.
	FailFast bool
}

// ServerSettings holds the HTTP surface configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// RequestTimeout bounds a single ingestion request.
	RequestTimeout time.Duration

	// MaxUploadBytes bounds the multipart body size.
	MaxUploadBytes int64
}

// BatchSettings holds directory and batch ingestion configuration.
type BatchSettings struct {
	// Workers is the number of concurrent ingestions.
	Workers int

	// RatePerSecond limits document starts per second. Zero disables limiting.
	RatePerSecond float64
}

// LogSettings holds logging configuration.
type LogSettings struct {
	// Level is the minimum level printed: debug, info, warn or error.
	Level string
}

// Settings is the immutable process configuration. It is built once at
// startup and passed by value into constructors.
type Settings struct {
	Chunking ChunkingSettings
	Storage  StorageSettings
	Server   ServerSettings
	Batch    BatchSettings
	Log      LogSettings
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Storage: StorageSettings{
			Driver: StorageSQLite,
			Postgres: PostgresSettings{
				Host:     "localhost",
				Port:     5432,
				User:     "raguser",
				Password: "ragpassword",
				Database: "ragdb",
			},
			MaxConns:       10,
			AcquireTimeout: 30 * time.Second,
		},
		Server: ServerSettings{
			Addr:           ":8001",
			RequestTimeout: 60 * time.Second,
			MaxUploadBytes: 32 << 20,
		},
		Batch: BatchSettings{
			Workers: 4,
		},
		Log: LogSettings{
			Level: "warn",
		},
	}
}

// Validate checks the settings for consistency.
func (s Settings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if !s.Storage.Driver.IsValid() {
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidInput, s.Storage.Driver)
	}
	if s.Storage.MaxConns <= 0 {
		return fmt.Errorf("%w: storage max_conns must be positive", ErrInvalidInput)
	}
	if s.Batch.Workers <= 0 {
		return fmt.Errorf("%w: batch workers must be positive", ErrInvalidInput)
	}
	if s.Batch.RatePerSecond < 0 {
		return fmt.Errorf("%w: batch rate must not be negative", ErrInvalidInput)
	}
	return nil
}
