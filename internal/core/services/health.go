package services

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// DefaultHealthTimeout bounds a single storage ping.
const DefaultHealthTimeout = 5 * time.Second

// HealthService pings storage independently of ingestion.
type HealthService struct {
	store   driven.ChunkStore
	driver  domain.StorageDriver
	timeout time.Duration
}

// NewHealthService creates a new health service.
func NewHealthService(store driven.ChunkStore, driver domain.StorageDriver) *HealthService {
	return &HealthService{
		store:   store,
		driver:  driver,
		timeout: DefaultHealthTimeout,
	}
}

// Check pings storage. A failed ping yields a degraded report, never an error.
func (s *HealthService) Check(ctx context.Context) driving.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := driving.HealthReport{Driver: s.driver}
	if err := s.store.Ping(ctx); err != nil {
		logger.Warn("health check failed: %v", err)
		report.Err = err
		return report
	}
	report.Healthy = true
	return report
}
