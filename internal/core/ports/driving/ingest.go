package driving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// IngestService runs the normalise, chunk and persist pipeline for one document.
type IngestService interface {
	// Ingest processes a raw document. Errors wrap one of the domain
	// categories (ErrValidation, ErrEncoding, ErrChunking, ErrStorage).
	Ingest(ctx context.Context, raw domain.RawDocument) (*domain.IngestionResult, error)

	// Preview runs normalisation and chunking without persisting anything.
	Preview(ctx context.Context, raw domain.RawDocument) ([]domain.Chunk, error)
}

// BatchService ingests many documents by location.
type BatchService interface {
	// IngestPaths loads and ingests every path. A failure on one path does
	// not stop the others.
	IngestPaths(ctx context.Context, paths []string, metadata map[string]any) (*BatchReport, error)

	// IngestDir ingests every supported document under root.
	IngestDir(ctx context.Context, root string, metadata map[string]any) (*BatchReport, error)

	// WatchDir ingests documents under root as they are created or modified,
	// reporting each outcome to onItem, until ctx is cancelled.
	WatchDir(ctx context.Context, root string, metadata map[string]any, onItem func(BatchItem)) error
}

// BatchItem is the outcome for one path of a batch.
type BatchItem struct {
	// URI is the document location.
	URI string

	// Chunks is the number of chunks created on success.
	Chunks int

	// Err is the failure, if any.
	Err error
}

// Success returns true if the item was ingested.
func (i BatchItem) Success() bool {
	return i.Err == nil
}

// BatchReport summarises a batch run.
type BatchReport struct {
	// Items are ordered as the input paths.
	Items []BatchItem

	// Elapsed is the wall time of the whole batch.
	Elapsed time.Duration
}

// Total returns the number of documents attempted.
func (r *BatchReport) Total() int {
	return len(r.Items)
}

// Successful returns the number of documents ingested.
func (r *BatchReport) Successful() int {
	n := 0
	for _, item := range r.Items {
		if item.Success() {
			n++
		}
	}
	return n
}

// Failed returns the number of documents that failed.
func (r *BatchReport) Failed() int {
	return r.Total() - r.Successful()
}

// Err joins the failures of every item, each prefixed with its URI.
// Returns nil when all items succeeded.
func (r *BatchReport) Err() error {
	var errs []error
	for _, item := range r.Items {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.URI, item.Err))
		}
	}
	return errors.Join(errs...)
}

// HealthService reports storage connectivity.
type HealthService interface {
	// Check pings storage and reports the result.
	Check(ctx context.Context) HealthReport
}

// HealthReport is the outcome of a health check.
type HealthReport struct {
	// Healthy is true when storage answered the ping.
	Healthy bool

	// Driver is the configured storage driver.
	Driver domain.StorageDriver

	// Err is the ping failure, if any.
	Err error
}

// Status returns "healthy" or "degraded".
func (h HealthReport) Status() string {
	if h.Healthy {
		return "healthy"
	}
	return "degraded"
}

// Database returns "connected" or "disconnected".
func (h HealthReport) Database() string {
	if h.Healthy {
		return "connected"
	}
	return "disconnected"
}
