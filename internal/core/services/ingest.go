package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService orchestrates the ingestion pipeline for single documents.
type IngestService struct {
	normaliser driven.TextNormaliser
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	store      driven.ChunkStore
	now        func() time.Time
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	normaliser driven.TextNormaliser,
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	store driven.ChunkStore,
) *IngestService {
	return &IngestService{
		normaliser: normaliser,
		extractors: extractors,
		chunker:    chunker,
		store:      store,
		now:        time.Now,
	}
}

// Ingest validates, normalises, chunks and persists one document.
// On error nothing has been persisted and the error wraps one of the
// domain categories, or the context error when ctx ended first.
func (s *IngestService) Ingest(ctx context.Context, raw domain.RawDocument) (*domain.IngestionResult, error) {
	start := s.now()
	logger.Section("Ingest " + raw.URI)

	// 1-4. Validate, extract, normalise and chunk
	chunks, err := s.prepare(ctx, raw)
	if err != nil {
		logger.Debug("ingest %s failed before storage: %v", raw.URI, err)
		return nil, err
	}

	// 5. Persist atomically
	if len(chunks) > 0 {
		batch := domain.ChunkBatch{
			DocumentURI: raw.URI,
			Metadata:    raw.Metadata,
			Chunks:      chunks,
		}
		if err := s.store.SaveBatch(ctx, batch); err != nil {
			logger.Warn("storing %d chunks for %s: %v", len(chunks), raw.URI, err)
			return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
	} else {
		logger.Debug("no text left in %s, nothing to store", raw.URI)
	}

	result := &domain.IngestionResult{
		Status:        domain.StatusSuccess,
		DocumentURI:   raw.URI,
		ChunksCreated: len(chunks),
		Elapsed:       s.now().Sub(start),
	}
	logger.Info("ingested %s: %d chunks in %s", raw.URI, result.ChunksCreated, result.Elapsed)
	return result, nil
}

// Preview runs the pipeline up to chunking without touching storage.
func (s *IngestService) Preview(ctx context.Context, raw domain.RawDocument) ([]domain.Chunk, error) {
	return s.prepare(ctx, raw)
}

func (s *IngestService) prepare(ctx context.Context, raw domain.RawDocument) ([]domain.Chunk, error) {
	// 1. Validate input shape
	format, err := s.validate(raw)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Repair encoding
	text := s.normaliser.Normalise(raw.Content, raw.Charset)
	logger.Debug("normalised %s: %d bytes -> %d chars", raw.URI, len(raw.Content), utf8.RuneCountInString(text))

	// 3. Extract format-specific text, then clean again since extraction
	// can decode entities into control characters.
	text, err = s.extractors.Extract(ctx, format, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: extracting %s text: %w", domain.ErrEncoding, format, err)
	}
	text = s.normaliser.Clean(text)
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: normalised text of %s is not valid UTF-8", domain.ErrEncoding, raw.URI)
	}

	// 4. Chunk
	chunks, err := s.chunker.Chunk(ctx, raw.URI, text, raw.Metadata)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrChunking) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrChunking, err)
	}
	logger.Debug("chunked %s with %s: %d chunks", raw.URI, s.chunker.Name(), len(chunks))
	return chunks, nil
}

// validate checks the document shape and resolves its format.
func (s *IngestService) validate(raw domain.RawDocument) (domain.Format, error) {
	if strings.TrimSpace(raw.URI) == "" {
		return "", fmt.Errorf("%w: document uri is required", domain.ErrValidation)
	}
	if raw.Content == nil {
		return "", fmt.Errorf("%w: content is required", domain.ErrValidation)
	}

	format, err := resolveFormat(raw)
	if err != nil {
		return "", err
	}
	if !s.extractors.Supports(format) {
		return "", fmt.Errorf("%w: %w: %s", domain.ErrValidation, domain.ErrUnsupportedType, format)
	}
	return format, nil
}

// resolveFormat picks the declared format, then the MIME type, then the URI
// extension. Opaque identifiers without a known extension are plain text.
func resolveFormat(raw domain.RawDocument) (domain.Format, error) {
	if raw.Format != "" {
		if !raw.Format.IsValid() {
			return "", fmt.Errorf("%w: %w: %s", domain.ErrValidation, domain.ErrUnsupportedType, raw.Format)
		}
		return raw.Format, nil
	}
	if raw.MIMEType != "" {
		if f := domain.FormatFromMIMEType(raw.MIMEType); f != "" {
			return f, nil
		}
		if !strings.HasPrefix(strings.ToLower(raw.MIMEType), "text/") {
			return "", fmt.Errorf("%w: %w: %s", domain.ErrValidation, domain.ErrUnsupportedType, raw.MIMEType)
		}
	}
	if f := domain.FormatFromExtension(raw.URI); f != "" {
		return f, nil
	}
	return domain.FormatPlainText, nil
}
