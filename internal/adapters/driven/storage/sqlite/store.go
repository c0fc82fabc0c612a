package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/gate"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// jsonEmptyObject is stored when a chunk carries no metadata.
const jsonEmptyObject = "{}"

// Store is a SQLite-backed chunk store.
type Store struct {
	db     *sql.DB
	path   string
	gate   *gate.Gate
	closed atomic.Bool
}

var _ driven.ChunkStore = (*Store)(nil)

// NewStore opens the SQLite database described by cfg.
// If cfg.SQLitePath is empty, defaults to ~/.sercha/data/chunks.db.
// The schema is not created; call Migrate for that.
func NewStore(cfg domain.StorageSettings) (*Store, error) {
	dbPath := cfg.SQLitePath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".sercha", "data", "chunks.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	g := gate.FromSettings(cfg)
	db.SetMaxOpenConns(g.Slots())

	return &Store{
		db:   db,
		path: dbPath,
		gate: g,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Migrate applies all pending migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrStoreClosed
	}
	return s.migrate(ctx, migrations.FS)
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) (int, error) {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return 0, fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
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
		// "001_document_chunks.up.sql" -> 1
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
		applied++
	}

	return applied, nil
}

func (s *Store) applyMigration(ctx context.Context, version int, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveBatch writes every chunk of the batch in one transaction.
// On any failure the transaction is rolled back and no row is visible.
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks (id, text, document_uri, chunk_num, metadata)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range batch.Chunks {
		metadata, err := marshalMetadata(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for chunk %d: %w", chunk.ChunkNum, err)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Text, chunk.DocumentURI, chunk.ChunkNum, metadata); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", chunk.ChunkNum, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CountChunks returns the number of rows stored for a document URI.
func (s *Store) CountChunks(ctx context.Context, uri string) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrStoreClosed
	}

	var n int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_chunks WHERE document_uri = ?", uri)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// ListChunks returns the rows stored for a document URI in insertion order.
func (s *Store) ListChunks(ctx context.Context, uri string) ([]domain.Chunk, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, document_uri, chunk_num, metadata
		FROM document_chunks WHERE document_uri = ?
		ORDER BY rowid
	`, uri)
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

// matchText returns chunks whose text matches an FTS5 query, best match first.
func (s *Store) matchText(ctx context.Context, query string, limit int) ([]domain.Chunk, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.text, c.document_uri, c.chunk_num
		FROM document_chunks_fts f
		JOIN document_chunks c ON c.rowid = f.rowid
		WHERE document_chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.Text, &c.DocumentURI, &c.ChunkNum); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Ping checks that the database is reachable and the chunk table exists.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	var name string
	row := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'document_chunks'")
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("document_chunks table: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("checking schema: %w", err)
	}
	return nil
}

func marshalMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return jsonEmptyObject, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
