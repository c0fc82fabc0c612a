package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure BatchService implements the interface.
var _ driving.BatchService = (*BatchService)(nil)

// ErrWatchUnsupported is returned by WatchDir when no watcher is configured.
var ErrWatchUnsupported = errors.New("watching is not supported by this loader")

// BatchService ingests many documents concurrently. Each document is an
// independent ingestion; one failure never stops the rest.
type BatchService struct {
	ingest  driving.IngestService
	loader  driven.DocumentLoader
	watcher driven.DocumentWatcher
	pool    *ants.Pool
	limiter *rate.Limiter
}

// BatchOption configures a BatchService.
type BatchOption func(*BatchService)

// WithWatcher enables WatchDir.
func WithWatcher(w driven.DocumentWatcher) BatchOption {
	return func(s *BatchService) { s.watcher = w }
}

// NewBatchService creates a batch service with cfg.Workers concurrent
// ingestions. Call Release when done.
func NewBatchService(
	ingest driving.IngestService,
	loader driven.DocumentLoader,
	cfg domain.BatchSettings,
	opts ...BatchOption,
) (*BatchService, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	s := &BatchService{
		ingest: ingest,
		loader: loader,
		pool:   pool,
	}
	if cfg.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Release stops the worker pool.
func (s *BatchService) Release() {
	s.pool.Release()
}

// IngestPaths loads and ingests every path. Items keep the input order.
// The returned error is non-nil only when ctx ended before all paths ran.
func (s *BatchService) IngestPaths(
	ctx context.Context,
	paths []string,
	metadata map[string]any,
) (*driving.BatchReport, error) {
	start := time.Now()
	report := &driving.BatchReport{Items: make([]driving.BatchItem, len(paths))}

	var wg sync.WaitGroup
	for i, path := range paths {
		report.Items[i].URI = path

		if err := s.wait(ctx); err != nil {
			for j := i; j < len(paths); j++ {
				report.Items[j] = driving.BatchItem{URI: paths[j], Err: err}
			}
			break
		}

		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			report.Items[i] = s.ingestOne(ctx, path, metadata)
		}); err != nil {
			wg.Done()
			report.Items[i].Err = fmt.Errorf("scheduling %s: %w", path, err)
		}
	}
	wg.Wait()

	report.Elapsed = time.Since(start)
	logger.Info("batch finished: %d/%d documents in %s", report.Successful(), report.Total(), report.Elapsed)
	return report, ctx.Err()
}

// IngestDir ingests every loadable document under root.
func (s *BatchService) IngestDir(
	ctx context.Context,
	root string,
	metadata map[string]any,
) (*driving.BatchReport, error) {
	paths, err := s.loader.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	logger.Debug("found %d documents under %s", len(paths), root)
	return s.IngestPaths(ctx, paths, metadata)
}

// WatchDir ingests changed documents under root until ctx is cancelled.
// Returns nil on cancellation.
func (s *BatchService) WatchDir(
	ctx context.Context,
	root string,
	metadata map[string]any,
	onItem func(driving.BatchItem),
) error {
	if s.watcher == nil {
		return ErrWatchUnsupported
	}
	changes, err := s.watcher.Watch(ctx, root)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	for path := range changes {
		if err := s.wait(ctx); err != nil {
			break
		}
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			item := s.ingestOne(ctx, path, metadata)
			if onItem != nil {
				onItem(item)
			}
		}); err != nil {
			wg.Done()
			logger.Warn("scheduling %s: %v", path, err)
		}
	}
	return nil
}

func (s *BatchService) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx)
}

// ingestOne loads a single path and runs it through the ingestion service.
// Caller metadata overrides loader metadata on key collisions.
func (s *BatchService) ingestOne(ctx context.Context, path string, metadata map[string]any) driving.BatchItem {
	item := driving.BatchItem{URI: path}

	raw, err := s.loader.Load(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		item.Err = err
		logger.Warn("loading %s: %v", path, err)
		return item
	}

	raw.Metadata = mergeMetadata(raw.Metadata, metadata)
	result, err := s.ingest.Ingest(ctx, *raw)
	if err != nil {
		item.Err = err
		logger.Warn("ingesting %s: %v", path, err)
		return item
	}

	item.Chunks = result.ChunksCreated
	return item
}

func mergeMetadata(base, overrides map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
