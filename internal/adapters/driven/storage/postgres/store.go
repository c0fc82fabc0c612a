package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/gate"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

const insertChunkSQL = `INSERT INTO document_chunks (id, text, document_uri, chunk_num, metadata)
VALUES ($1, $2, $3, $4, $5::jsonb)`

// Pool is the subset of *pgxpool.Pool used by the store.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store is a PostgreSQL-backed chunk store.
type Store struct {
	pool   Pool
	gate   *gate.Gate
	closed atomic.Bool
}

var _ driven.ChunkStore = (*Store)(nil)

// NewStore connects a pool sized by cfg.MaxConns.
func NewStore(ctx context.Context, cfg domain.StorageSettings) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	g := gate.FromSettings(cfg)
	poolCfg.MaxConns = int32(g.Slots())

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return NewWithPool(pool, g), nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool Pool, g *gate.Gate) *Store {
	return &Store{pool: pool, gate: g}
}

// Close closes the pool.
func (s *Store) Close() error {
	if !s.closed.Swap(true) {
		s.pool.Close()
	}
	return nil
}

// SaveBatch inserts every chunk of the batch in one transaction.
// Any failure, including context cancellation, rolls the transaction back.
func (s *Store) SaveBatch(ctx context.Context, batch domain.ChunkBatch) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}
	if err := batch.Validate(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}

	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := insertChunks(ctx, tx, batch.Chunks); err != nil {
		// Roll back even when ctx is already done.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Warn("rollback for %s failed: %v", batch.DocumentURI, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertChunks(ctx context.Context, tx pgx.Tx, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		metadata, err := marshalMetadata(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for chunk %d: %w", chunk.ChunkNum, err)
		}
		if _, err := tx.Exec(ctx, insertChunkSQL,
			chunk.ID, chunk.Text, chunk.DocumentURI, chunk.ChunkNum, metadata); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.ChunkNum, err)
		}
	}
	return nil
}

// CountChunks returns the number of rows stored for a document URI.
func (s *Store) CountChunks(ctx context.Context, uri string) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrStoreClosed
	}
	var n int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM document_chunks WHERE document_uri = $1", uri).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// ListChunks returns the rows stored for a document URI in insertion order.
func (s *Store) ListChunks(ctx context.Context, uri string) ([]domain.Chunk, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, text, document_uri, chunk_num, metadata::text
		FROM document_chunks WHERE document_uri = $1
		ORDER BY created_at, chunk_num`, uri)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var metadata string
		if err := rows.Scan(&c.ID, &c.Text, &c.DocumentURI, &c.ChunkNum, &metadata); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// Ping checks connectivity and that the chunk table exists.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT to_regclass('document_chunks') IS NOT NULL").Scan(&exists); err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("document_chunks table: %w", domain.ErrNotFound)
	}
	return nil
}

// Migrate applies all pending migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrStoreClosed
	}
	return s.migrate(ctx, migrations.FS)
}

func (s *Store) migrate(ctx context.Context, fsys fs.FS) (int, error) {
	if _, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT now()
		)`); err != nil {
		return 0, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return 0, fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	applied := 0
	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(ctx, version, string(content)); err != nil {
			return applied, fmt.Errorf("executing migration %s: %w", name, err)
		}
		logger.Debug("applied migration %s", name)
		applied++
	}
	return applied, nil
}

func (s *Store) applyMigration(ctx context.Context, version int, script string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, script); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return err
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return err
	}
	return tx.Commit(ctx)
}

func marshalMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
