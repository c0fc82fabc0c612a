package api

import (
	"errors"

	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

var (
	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("api: ingest service is required")

	// ErrMissingHealthService is returned when the health service is not provided.
	ErrMissingHealthService = errors.New("api: health service is required")
)

// Ports aggregates the driving ports used by the HTTP server.
type Ports struct {
	// Ingest runs single-document ingestion.
	Ingest driving.IngestService

	// Batch ingests server-side paths. Optional: without it document_uri
	// uploads and /ingest/batch are unavailable.
	Batch driving.BatchService

	// Health pings storage.
	Health driving.HealthService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Health == nil {
		return ErrMissingHealthService
	}
	return nil
}
